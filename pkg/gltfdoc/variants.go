package gltfdoc

import (
	"fmt"
	"slices"
)

// Mapping binds a material to one or more variants on a primitive.
type Mapping struct {
	Material int    `json:"material"`
	Variants []int  `json:"variants"`
	Name     string `json:"name,omitempty"`
}

type variantDef struct {
	Name string `json:"name"`
}

type documentVariants struct {
	Variants []variantDef `json:"variants"`
}

type primitiveVariants struct {
	Mappings []Mapping `json:"mappings"`
}

// VariantNames returns the names declared in the document-level
// KHR_materials_variants extension, in index order.
func (d *Document) VariantNames() ([]string, error) {
	var ext documentVariants
	if _, err := d.Extensions.decode(ExtMaterialsVariants, &ext); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ExtMaterialsVariants, err)
	}
	names := make([]string, 0, len(ext.Variants))
	for _, v := range ext.Variants {
		names = append(names, v.Name)
	}
	return names, nil
}

// SetVariantNames writes the document-level KHR_materials_variants
// extension. An empty list removes the extension and its extensionsUsed
// entry.
func (d *Document) SetVariantNames(names []string) error {
	if len(names) == 0 {
		d.Extensions.remove(ExtMaterialsVariants)
		d.RemoveExtensionUsed(ExtMaterialsVariants)
		return nil
	}
	ext := documentVariants{Variants: make([]variantDef, len(names))}
	for i, n := range names {
		ext.Variants[i] = variantDef{Name: n}
	}
	return d.Extensions.set(ExtMaterialsVariants, ext)
}

// RemoveVariants strips KHR_materials_variants from the document and every
// primitive and drops it from extensionsUsed.
func (d *Document) RemoveVariants() {
	d.Extensions.remove(ExtMaterialsVariants)
	for _, m := range d.Meshes {
		if m == nil {
			continue
		}
		for _, p := range m.Primitives {
			if p != nil {
				p.ClearMappings()
			}
		}
	}
	d.RemoveExtensionUsed(ExtMaterialsVariants)
}

// HasVariantMappings reports whether any primitive carries a
// KHR_materials_variants extension.
func (d *Document) HasVariantMappings() bool {
	for _, m := range d.Meshes {
		if m == nil {
			continue
		}
		for _, p := range m.Primitives {
			if p != nil && p.HasMappings() {
				return true
			}
		}
	}
	return false
}

// Mappings returns the primitive's variant mappings, or nil.
func (p *Primitive) Mappings() ([]Mapping, error) {
	var ext primitiveVariants
	if _, err := p.Extensions.decode(ExtMaterialsVariants, &ext); err != nil {
		return nil, fmt.Errorf("decoding primitive %s: %w", ExtMaterialsVariants, err)
	}
	return ext.Mappings, nil
}

// SetMappings replaces the primitive's variant mappings. An empty list
// removes the extension.
func (p *Primitive) SetMappings(mappings []Mapping) error {
	if len(mappings) == 0 {
		p.ClearMappings()
		return nil
	}
	return p.Extensions.set(ExtMaterialsVariants, primitiveVariants{Mappings: mappings})
}

// ClearMappings removes the primitive's KHR_materials_variants extension.
func (p *Primitive) ClearMappings() {
	p.Extensions.remove(ExtMaterialsVariants)
}

// HasMappings reports whether the primitive carries KHR_materials_variants.
func (p *Primitive) HasMappings() bool {
	_, ok := p.Extensions[ExtMaterialsVariants]
	return ok
}

// MappingFor returns the first mapping that lists variant.
func MappingFor(mappings []Mapping, variant int) (Mapping, bool) {
	for _, m := range mappings {
		if slices.Contains(m.Variants, variant) {
			return m, true
		}
	}
	return Mapping{}, false
}
