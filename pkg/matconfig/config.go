// Package matconfig models the material configuration document: the
// curated material list, per-mesh material and variant assignments, mesh
// groups that override assignments for matching files, and model catalogs.
package matconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotObject is returned when a configuration document is not a JSON object.
var ErrNotObject = errors.New("configuration document is not a JSON object")

// Material is a curated material entry. Tags are editor labels and are only
// carried through.
type Material struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Variant binds a variant name to the material shown when it is selected.
type Variant struct {
	Name     string `json:"name"`
	Material string `json:"material"`
}

// MeshAssignment is the material setup for one mesh name.
type MeshAssignment struct {
	// DefaultMaterial is empty when the mesh keeps its original material.
	DefaultMaterial string    `json:"defaultMaterial"`
	Variants        []Variant `json:"variants"`
	// AutoTag is editor state, carried through untouched.
	AutoTag json.RawMessage `json:"autoTag,omitempty"`
}

// MeshGroup overrides mesh assignments for files matching Filenames.
type MeshGroup struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	Filenames []string                    `json:"filenames"`
	Meshes    *OrderedMap[MeshAssignment] `json:"meshes"`
}

// Document is the configuration document.
type Document struct {
	Materials       []Material                  `json:"materials"`
	MeshAssignments *OrderedMap[MeshAssignment] `json:"meshAssignments"`
	MeshGroups      *OrderedMap[MeshGroup]      `json:"meshGroups,omitempty"`
	Models          *OrderedMap[[]string]       `json:"models,omitempty"`
	SortSettings    json.RawMessage             `json:"sortSettings,omitempty"`
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotObject
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if doc.MeshAssignments == nil {
		doc.MeshAssignments = NewOrderedMap[MeshAssignment]()
	}
	return &doc, nil
}

// Load reads and decodes the configuration document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// MaterialNames returns the configured material names in order.
func (d *Document) MaterialNames() []string {
	names := make([]string, 0, len(d.Materials))
	for _, m := range d.Materials {
		names = append(names, m.Name)
	}
	return names
}

// HasMaterial reports whether name is in the curated material list.
func (d *Document) HasMaterial(name string) bool {
	for _, m := range d.Materials {
		if m.Name == name {
			return true
		}
	}
	return false
}

// ModelEntries returns the filename substrings listed under label.
func (d *Document) ModelEntries(label string) ([]string, bool) {
	return d.Models.Get(label)
}

// ModelContains reports whether the catalog under label lists entry exactly.
func (d *Document) ModelContains(label, entry string) bool {
	entries, _ := d.Models.Get(label)
	for _, e := range entries {
		if e == entry {
			return true
		}
	}
	return false
}

// ModelMatchesFile reports whether any entry of the catalog under label is
// a substring of fileName.
func (d *Document) ModelMatchesFile(label, fileName string) bool {
	entries, _ := d.Models.Get(label)
	name := normalizeName(fileName)
	for _, e := range entries {
		if e != "" && strings.Contains(name, normalizeName(e)) {
			return true
		}
	}
	return false
}

// DanglingReferences lists material names used by assignments or groups
// that are not in the curated material list. They are tolerated at run
// time; this is a diagnostic.
func (d *Document) DanglingReferences() []string {
	seen := map[string]bool{}
	var out []string
	check := func(name string) {
		if name == "" || seen[name] || d.HasMaterial(name) {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	visit := func(_ string, a MeshAssignment) {
		check(a.DefaultMaterial)
		for _, v := range a.Variants {
			check(v.Material)
		}
	}
	d.MeshAssignments.Each(visit)
	d.MeshGroups.Each(func(_ string, g MeshGroup) {
		g.Meshes.Each(visit)
	})
	return out
}
