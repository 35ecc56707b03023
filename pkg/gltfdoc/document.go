// Package gltfdoc provides a pass-through model of glTF JSON documents.
//
// Only the members touched by material merging and variant handling are
// typed: materials and their texture slots, textures, images, meshes,
// primitives, and the KHR_materials_variants, KHR_texture_transform and
// KHR_materials_sheen extensions. Everything else, at every level, is kept as
// raw JSON and written back unchanged.
package gltfdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"
)

// Extension names handled by the model.
const (
	ExtMaterialsVariants = "KHR_materials_variants"
	ExtTextureTransform  = "KHR_texture_transform"
	ExtMaterialsSheen    = "KHR_materials_sheen"
)

// Document errors.
var (
	ErrNotObject = errors.New("glTF document is not a JSON object")
	ErrEmpty     = errors.New("glTF document is empty")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a glTF document.
type Document struct {
	Materials          []*Material       `json:"materials,omitempty"`
	Textures           []*Texture        `json:"textures,omitempty"`
	Images             []*Image          `json:"images,omitempty"`
	Samplers           []json.RawMessage `json:"samplers,omitempty"`
	Meshes             []*Mesh           `json:"meshes,omitempty"`
	Extensions         Extensions        `json:"extensions,omitempty"`
	ExtensionsUsed     []string          `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string          `json:"extensionsRequired,omitempty"`

	Unknown Fields `json:"-"`
}

type documentAlias Document

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var a documentAlias
	rest, err := decodeObject(data, &a,
		"materials", "textures", "images", "samplers", "meshes",
		"extensions", "extensionsUsed", "extensionsRequired")
	if err != nil {
		return err
	}
	*d = Document(a)
	d.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	return encodeObject(documentAlias(d), d.Unknown)
}

// Parse decodes a glTF JSON document. A leading UTF-8 byte order mark is
// ignored.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if data[0] != '{' {
		return nil, ErrNotObject
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// Encode serializes the document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return append(data, '\n'), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() (*Document, error) {
	out, err := deepClone(*d)
	if err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	return &out, nil
}

// EnsureArrays replaces nil top-level arrays with empty ones.
func (d *Document) EnsureArrays() {
	if d.Materials == nil {
		d.Materials = []*Material{}
	}
	if d.Textures == nil {
		d.Textures = []*Texture{}
	}
	if d.Images == nil {
		d.Images = []*Image{}
	}
	if d.Samplers == nil {
		d.Samplers = []json.RawMessage{}
	}
	if d.Meshes == nil {
		d.Meshes = []*Mesh{}
	}
}

// UsesExtension reports whether name is listed in extensionsUsed.
func (d *Document) UsesExtension(name string) bool {
	return slices.Contains(d.ExtensionsUsed, name)
}

// AddExtensionUsed appends name to extensionsUsed if it is not listed yet.
func (d *Document) AddExtensionUsed(name string) {
	if !slices.Contains(d.ExtensionsUsed, name) {
		d.ExtensionsUsed = append(d.ExtensionsUsed, name)
	}
}

// AddExtensionRequired appends name to extensionsRequired if it is not listed yet.
func (d *Document) AddExtensionRequired(name string) {
	if !slices.Contains(d.ExtensionsRequired, name) {
		d.ExtensionsRequired = append(d.ExtensionsRequired, name)
	}
}

// RemoveExtensionUsed drops name from extensionsUsed.
func (d *Document) RemoveExtensionUsed(name string) {
	d.ExtensionsUsed = slices.DeleteFunc(d.ExtensionsUsed, func(s string) bool { return s == name })
	if len(d.ExtensionsUsed) == 0 {
		d.ExtensionsUsed = nil
	}
}

// Primitives calls fn for every primitive of every mesh.
func (d *Document) Primitives(fn func(mesh *Mesh, p *Primitive) error) error {
	for _, m := range d.Meshes {
		if m == nil {
			continue
		}
		for _, p := range m.Primitives {
			if p == nil {
				continue
			}
			if err := fn(m, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeepCopy returns a deep copy of v.
func DeepCopy[T any](v T) (T, error) {
	return deepClone(v)
}

func deepClone[T any](v T) (T, error) {
	var out T
	err := deepcopy.Copy(&out, v)
	return out, err
}
