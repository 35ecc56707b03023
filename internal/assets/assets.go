// Package assets reads model and configuration files from disk.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Manager reads files, keeping shared inputs (the reference document and the
// configuration) in a cache so concurrent workers read them once.
type Manager struct {
	cache *Cache
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// Load reads a file through the cache.
func (m *Manager) Load(path string) ([]byte, error) {
	key := cacheKey(path)
	if e, ok := m.cache.Get(key); ok {
		return e.Data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m.cache.Set(key, Entry{Data: data, Digest: xxhash.Sum64(data)})
	return data, nil
}

// Digest returns the xxhash64 of a file previously read through Load.
func (m *Manager) Digest(path string) (uint64, bool) {
	e, ok := m.cache.Get(cacheKey(path))
	return e.Digest, ok
}

// Read reads a file without caching it. Targets are read this way since
// each one is used by exactly one pipeline.
func (m *Manager) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Close drops cached data.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// ListModels returns the .gltf files directly inside dir, sorted by name.
// A path to a single file is returned as is.
func ListModels(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gltf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Entry is a cached file.
type Entry struct {
	Data   []byte
	Digest uint64
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string]Entry
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]Entry),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = e
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
