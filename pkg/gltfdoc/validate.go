package gltfdoc

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks that every index the model touches points inside its
// target array: primitive and mapping materials, mapping variants, texture
// sources and material texture slots. All violations are reported.
func (d *Document) Validate() error {
	var errs error

	variants, err := d.VariantNames()
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	for mi, m := range d.Meshes {
		if m == nil {
			continue
		}
		for pi, p := range m.Primitives {
			if p == nil {
				continue
			}
			where := fmt.Sprintf("mesh %d (%s) primitive %d", mi, m.Name, pi)
			if p.Material != nil && !inRange(*p.Material, len(d.Materials)) {
				errs = multierr.Append(errs, fmt.Errorf("%s: material %d out of range [0,%d)", where, *p.Material, len(d.Materials)))
			}
			mappings, err := p.Mappings()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", where, err))
				continue
			}
			for _, mp := range mappings {
				if !inRange(mp.Material, len(d.Materials)) {
					errs = multierr.Append(errs, fmt.Errorf("%s: mapping material %d out of range [0,%d)", where, mp.Material, len(d.Materials)))
				}
				for _, v := range mp.Variants {
					if !inRange(v, len(variants)) {
						errs = multierr.Append(errs, fmt.Errorf("%s: mapping variant %d out of range [0,%d)", where, v, len(variants)))
					}
				}
			}
		}
	}

	for ti, t := range d.Textures {
		if t != nil && t.Source != nil && !inRange(*t.Source, len(d.Images)) {
			errs = multierr.Append(errs, fmt.Errorf("texture %d (%s): source %d out of range [0,%d)", ti, t.Name, *t.Source, len(d.Images)))
		}
	}

	for mi, m := range d.Materials {
		if m == nil {
			continue
		}
		err := m.EachTexture(func(slot string, ti *TextureInfo) bool {
			if !inRange(ti.Index, len(d.Textures)) {
				errs = multierr.Append(errs, fmt.Errorf("material %d (%s): %s index %d out of range [0,%d)", mi, m.Name, slot, ti.Index, len(d.Textures)))
			}
			return true
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("material %d (%s): %w", mi, m.Name, err))
		}
	}

	return errs
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
