package gltfdoc

// MaterialIndex returns the index of the first material named name.
func (d *Document) MaterialIndex(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, m := range d.Materials {
		if m != nil && m.Name == name {
			return i, true
		}
	}
	return -1, false
}

// VariantIndex returns the index of the variant named name in the
// document-level KHR_materials_variants extension. A malformed extension
// resolves nothing.
func (d *Document) VariantIndex(name string) (int, bool) {
	names, err := d.VariantNames()
	if err != nil {
		return -1, false
	}
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// TextureImage returns the image referenced by the texture at texIndex.
func (d *Document) TextureImage(texIndex int) (*Image, bool) {
	if texIndex < 0 || texIndex >= len(d.Textures) {
		return nil, false
	}
	tex := d.Textures[texIndex]
	if tex == nil || tex.Source == nil {
		return nil, false
	}
	src := *tex.Source
	if src < 0 || src >= len(d.Images) || d.Images[src] == nil {
		return nil, false
	}
	return d.Images[src], true
}
