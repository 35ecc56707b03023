package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zip"
)

// WriteFiles writes every output as a file in dir and returns the paths.
func WriteFiles(dir string, outputs []Output) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.FileName)
		if err := os.WriteFile(path, o.Data, 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteBundle writes every output into one zip archive at path.
func WriteBundle(path string, outputs []Output) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, o := range outputs {
		w, err := zw.Create(o.FileName)
		if err != nil {
			return fmt.Errorf("adding %s: %w", o.FileName, err)
		}
		if _, err := w.Write(o.Data); err != nil {
			return fmt.Errorf("adding %s: %w", o.FileName, err)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ManifestEntry represents one output in the manifest.
type ManifestEntry struct {
	Source  string `json:"source"`
	File    string `json:"file"`
	Variant string `json:"variant,omitempty"`
	Size    int    `json:"size"`
	XXHash  string `json:"xxhash"`
}

// ManifestFailure represents one failed target in the manifest.
type ManifestFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Manifest summarizes a run.
type Manifest struct {
	Mode     string            `json:"mode"`
	Outputs  []ManifestEntry   `json:"outputs"`
	Failures []ManifestFailure `json:"failures,omitempty"`
	Filtered []string          `json:"filtered,omitempty"`
}

// NewManifest builds the manifest of a report.
func NewManifest(mode Mode, r *Report) Manifest {
	m := Manifest{Mode: mode.String(), Outputs: []ManifestEntry{}}
	for _, o := range r.Outputs() {
		m.Outputs = append(m.Outputs, ManifestEntry{
			Source:  o.Source,
			File:    o.FileName,
			Variant: o.Variant,
			Size:    len(o.Data),
			XXHash:  strconv.FormatUint(o.Digest, 16),
		})
	}
	for _, f := range r.Failures() {
		m.Failures = append(m.Failures, ManifestFailure{File: f.File, Error: f.Message})
	}
	for _, res := range r.Results {
		if res.Filtered {
			m.Filtered = append(m.Filtered, res.File)
		}
	}
	return m
}

// WriteManifest writes the manifest of a report as JSON.
func WriteManifest(path string, mode Mode, r *Report) error {
	data, err := json.MarshalIndent(NewManifest(mode, r), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
