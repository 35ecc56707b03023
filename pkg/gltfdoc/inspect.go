package gltfdoc

import (
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
)

// Summary describes a document as a standard glTF decoder sees it.
type Summary struct {
	Materials      int
	Textures       int
	Images         int
	Samplers       int
	Meshes         int
	Primitives     int
	Mapped         int // primitives carrying variant mappings
	Variants       []string
	ExtensionsUsed []string
	Integrity      error
}

// Inspect decodes data with github.com/qmuntal/gltf, so a produced document
// is known to load in a conforming reader, and adds the variant details and
// index integrity from this package's model. Buffers are not resolved.
func Inspect(data []byte) (*Summary, error) {
	var std gltf.Document
	if err := json.Unmarshal(data, &std); err != nil {
		return nil, fmt.Errorf("standard decode: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Materials:      len(std.Materials),
		Textures:       len(std.Textures),
		Images:         len(std.Images),
		Samplers:       len(std.Samplers),
		Meshes:         len(std.Meshes),
		ExtensionsUsed: std.ExtensionsUsed,
	}
	for _, m := range std.Meshes {
		s.Primitives += len(m.Primitives)
	}
	_ = doc.Primitives(func(_ *Mesh, p *Primitive) error {
		if p.HasMappings() {
			s.Mapped++
		}
		return nil
	})
	if s.Variants, err = doc.VariantNames(); err != nil {
		return nil, err
	}
	s.Integrity = doc.Validate()
	return s, nil
}
