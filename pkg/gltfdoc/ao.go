package gltfdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Ambient occlusion errors.
var (
	ErrAOImageMissing   = errors.New("ambient occlusion image not found in target")
	ErrAOTextureMissing = errors.New("ambient occlusion texture not found in reference")
	ErrAOTextureSource  = errors.New("ambient occlusion texture has no valid image source")
)

// AONaming holds the naming conventions used to recognise ambient
// occlusion assets.
type AONaming struct {
	// ImageMarker is looked for in image names, e.g. "_AO". A name ending
	// in the marker's letters after a hyphen ("-AO") also matches.
	ImageMarker string `yaml:"image_marker"`
	// TextureMarker is looked for in reference texture names.
	TextureMarker string `yaml:"texture_marker"`
}

// DefaultAONaming returns the asset pipeline's default AO conventions.
func DefaultAONaming() AONaming {
	return AONaming{
		ImageMarker:   "_AO",
		TextureMarker: "tex_AmbientOcclusion_A",
	}
}

// IsAOImage reports whether img looks like an ambient occlusion image.
func (n AONaming) IsAOImage(img *Image) bool {
	if img == nil || n.ImageMarker == "" {
		return false
	}
	label := img.Label()
	if label == "" {
		return false
	}
	if strings.Contains(label, n.ImageMarker) {
		return true
	}
	suffix := strings.TrimLeft(n.ImageMarker, "_-")
	return suffix != "" && strings.HasSuffix(label, "-"+suffix)
}

// FindAOImage returns the index of the first AO image in d.
func (n AONaming) FindAOImage(d *Document) (int, bool) {
	for i, img := range d.Images {
		if n.IsAOImage(img) {
			return i, true
		}
	}
	return -1, false
}

// FindAOTexture returns the index of the first texture whose name contains
// the texture marker.
func (n AONaming) FindAOTexture(d *Document) (int, bool) {
	if n.TextureMarker == "" {
		return -1, false
	}
	for i, t := range d.Textures {
		if t != nil && strings.Contains(t.Name, n.TextureMarker) {
			return i, true
		}
	}
	return -1, false
}

// IsAOTexture reports whether the texture at texIndex samples an AO image.
func (n AONaming) IsAOTexture(d *Document, texIndex int) bool {
	img, ok := d.TextureImage(texIndex)
	return ok && n.IsAOImage(img)
}

// PreserveAO returns copies of the reference's textures and images in which
// the image behind the reference AO texture is replaced by a copy of the
// target's own AO image. Both AO assets must exist.
func PreserveAO(target, reference *Document, naming AONaming) ([]*Texture, []*Image, error) {
	imgIdx, ok := naming.FindAOImage(target)
	if !ok {
		return nil, nil, ErrAOImageMissing
	}
	texIdx, ok := naming.FindAOTexture(reference)
	if !ok {
		return nil, nil, ErrAOTextureMissing
	}
	src := reference.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(reference.Images) {
		return nil, nil, fmt.Errorf("%w: texture %q", ErrAOTextureSource, reference.Textures[texIdx].Name)
	}

	textures, err := deepClone(reference.Textures)
	if err != nil {
		return nil, nil, fmt.Errorf("copying textures: %w", err)
	}
	images, err := deepClone(reference.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("copying images: %w", err)
	}
	ao, err := deepClone(*target.Images[imgIdx])
	if err != nil {
		return nil, nil, fmt.Errorf("copying AO image: %w", err)
	}
	images[*src] = &ao
	return textures, images, nil
}
