package gltfdoc

import (
	"fmt"
	"slices"
)

// IndexMap maps old array indices to new ones.
type IndexMap map[int]int

// Lookup returns the new index for old.
func (m IndexMap) Lookup(old int) (int, bool) {
	n, ok := m[old]
	return n, ok
}

// Contiguous assigns 0..k-1 to the given indices in ascending order.
func Contiguous(used []int) IndexMap {
	sorted := slices.Clone(used)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	m := make(IndexMap, len(sorted))
	for i, old := range sorted {
		m[old] = i
	}
	return m
}

// MaterialMerge is the result of ordering a reference document's materials.
type MaterialMerge struct {
	// Materials are deep copies of the reference materials in merged order.
	Materials []*Material
	// ByName maps a material name to its merged index.
	ByName map[string]int
	// OldToNew maps a reference material index to its merged index.
	OldToNew IndexMap
	// Missing lists configured names that the reference does not define.
	Missing []string
}

// MergeMaterials orders the reference materials: names from order first
// (matched by name, each taken once), then every remaining reference
// material in reference order. The reference is not modified.
func MergeMaterials(reference *Document, order []string) (*MaterialMerge, error) {
	merge := &MaterialMerge{
		Materials: make([]*Material, 0, len(reference.Materials)),
		ByName:    make(map[string]int, len(reference.Materials)),
		OldToNew:  make(IndexMap, len(reference.Materials)),
	}
	take := func(old int) error {
		if _, done := merge.OldToNew[old]; done {
			return nil
		}
		src := reference.Materials[old]
		var mat *Material
		if src != nil {
			c, err := deepClone(*src)
			if err != nil {
				return fmt.Errorf("copying material %d: %w", old, err)
			}
			mat = &c
		}
		merge.OldToNew[old] = len(merge.Materials)
		if mat != nil {
			if _, seen := merge.ByName[mat.Name]; !seen {
				merge.ByName[mat.Name] = len(merge.Materials)
			}
		}
		merge.Materials = append(merge.Materials, mat)
		return nil
	}

	for _, name := range order {
		old, ok := reference.MaterialIndex(name)
		if !ok {
			merge.Missing = append(merge.Missing, name)
			continue
		}
		if err := take(old); err != nil {
			return nil, err
		}
	}
	for old := range reference.Materials {
		if err := take(old); err != nil {
			return nil, err
		}
	}
	return merge, nil
}

// RemapMaterials rewrites every primitive material index and every variant
// mapping material index through remap. A primitive whose index has no
// target loses its material member; a mapping without a target is dropped.
// It returns the number of references that were dropped.
func (d *Document) RemapMaterials(remap func(old int) (int, bool)) (int, error) {
	dropped := 0
	err := d.Primitives(func(_ *Mesh, p *Primitive) error {
		if p.Material != nil {
			if n, ok := remap(*p.Material); ok {
				p.Material = Index(n)
			} else {
				p.Material = nil
				dropped++
			}
		}
		if !p.HasMappings() {
			return nil
		}
		mappings, err := p.Mappings()
		if err != nil {
			return err
		}
		kept := mappings[:0]
		for _, mp := range mappings {
			n, ok := remap(mp.Material)
			if !ok {
				dropped++
				continue
			}
			mp.Material = n
			kept = append(kept, mp)
		}
		return p.SetMappings(kept)
	})
	return dropped, err
}

// Usage is the set of array entries reachable from the primitives'
// material members, each list ascending.
type Usage struct {
	Materials []int
	Textures  []int
	Images    []int
}

// UsageClosure collects the materials referenced by primitive material
// members, the textures referenced by those materials' slots and the images
// referenced by those textures. Out-of-range references are ignored.
func (d *Document) UsageClosure() (Usage, error) {
	materials := map[int]bool{}
	_ = d.Primitives(func(_ *Mesh, p *Primitive) error {
		if p.Material != nil && *p.Material >= 0 && *p.Material < len(d.Materials) {
			materials[*p.Material] = true
		}
		return nil
	})

	textures := map[int]bool{}
	for idx := range materials {
		m := d.Materials[idx]
		if m == nil {
			continue
		}
		err := m.EachTexture(func(_ string, ti *TextureInfo) bool {
			if ti.Index >= 0 && ti.Index < len(d.Textures) {
				textures[ti.Index] = true
			}
			return true
		})
		if err != nil {
			return Usage{}, fmt.Errorf("material %d: %w", idx, err)
		}
	}

	images := map[int]bool{}
	for idx := range textures {
		t := d.Textures[idx]
		if t != nil && t.Source != nil && *t.Source >= 0 && *t.Source < len(d.Images) {
			images[*t.Source] = true
		}
	}

	return Usage{
		Materials: sortedKeys(materials),
		Textures:  sortedKeys(textures),
		Images:    sortedKeys(images),
	}, nil
}

// Prune keeps only the entries listed in u and reindexes every reference
// into materials, textures and images. References to dropped entries are
// removed. u must hold in-range indices, as UsageClosure returns.
func (d *Document) Prune(u Usage) error {
	matMap := Contiguous(u.Materials)
	texMap := Contiguous(u.Textures)
	imgMap := Contiguous(u.Images)

	if _, err := d.RemapMaterials(matMap.Lookup); err != nil {
		return err
	}

	materials := make([]*Material, 0, len(matMap))
	for _, old := range u.Materials {
		m := d.Materials[old]
		if m != nil {
			err := m.EachTexture(func(_ string, ti *TextureInfo) bool {
				n, ok := texMap.Lookup(ti.Index)
				ti.Index = n
				return ok
			})
			if err != nil {
				return fmt.Errorf("material %d: %w", old, err)
			}
		}
		materials = append(materials, m)
	}

	textures := make([]*Texture, 0, len(texMap))
	for _, old := range u.Textures {
		t := d.Textures[old]
		if t != nil && t.Source != nil {
			if n, ok := imgMap.Lookup(*t.Source); ok {
				t.Source = Index(n)
			} else {
				t.Source = nil
			}
		}
		textures = append(textures, t)
	}

	images := make([]*Image, 0, len(imgMap))
	for _, old := range u.Images {
		images = append(images, d.Images[old])
	}

	d.Materials = materials
	d.Textures = textures
	d.Images = images
	return nil
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
