package gltfdoc

import (
	"encoding/json"
	"path"
	"strings"
)

// Texture slot names as they appear in material JSON.
const (
	SlotBaseColor         = "baseColorTexture"
	SlotMetallicRoughness = "metallicRoughnessTexture"
	SlotNormal            = "normalTexture"
	SlotOcclusion         = "occlusionTexture"
	SlotEmissive          = "emissiveTexture"
	SlotSheenColor        = "sheenColorTexture"
	SlotSheenRoughness    = "sheenRoughnessTexture"
)

// Material is a glTF material.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureInfo          `json:"normalTexture,omitempty"`
	OcclusionTexture     *TextureInfo          `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	Extensions           Extensions            `json:"extensions,omitempty"`

	Unknown Fields `json:"-"`
}

type materialAlias Material

// UnmarshalJSON implements json.Unmarshaler.
func (m *Material) UnmarshalJSON(data []byte) error {
	var a materialAlias
	rest, err := decodeObject(data, &a,
		"name", "pbrMetallicRoughness", "normalTexture", "occlusionTexture",
		"emissiveTexture", "extensions")
	if err != nil {
		return err
	}
	*m = Material(a)
	m.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Material) MarshalJSON() ([]byte, error) {
	return encodeObject(materialAlias(m), m.Unknown)
}

// PBRMetallicRoughness holds the metallic-roughness texture slots.
type PBRMetallicRoughness struct {
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`

	Unknown Fields `json:"-"`
}

type pbrAlias PBRMetallicRoughness

// UnmarshalJSON implements json.Unmarshaler.
func (p *PBRMetallicRoughness) UnmarshalJSON(data []byte) error {
	var a pbrAlias
	rest, err := decodeObject(data, &a, "baseColorTexture", "metallicRoughnessTexture")
	if err != nil {
		return err
	}
	*p = PBRMetallicRoughness(a)
	p.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p PBRMetallicRoughness) MarshalJSON() ([]byte, error) {
	return encodeObject(pbrAlias(p), p.Unknown)
}

// Sheen is the KHR_materials_sheen material extension.
type Sheen struct {
	SheenColorTexture     *TextureInfo `json:"sheenColorTexture,omitempty"`
	SheenRoughnessTexture *TextureInfo `json:"sheenRoughnessTexture,omitempty"`

	Unknown Fields `json:"-"`
}

type sheenAlias Sheen

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sheen) UnmarshalJSON(data []byte) error {
	var a sheenAlias
	rest, err := decodeObject(data, &a, "sheenColorTexture", "sheenRoughnessTexture")
	if err != nil {
		return err
	}
	*s = Sheen(a)
	s.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Sheen) MarshalJSON() ([]byte, error) {
	return encodeObject(sheenAlias(s), s.Unknown)
}

// TextureInfo is a material's reference to a texture.
type TextureInfo struct {
	Index      int        `json:"index"`
	Extensions Extensions `json:"extensions,omitempty"`

	Unknown Fields `json:"-"`
}

type textureInfoAlias TextureInfo

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextureInfo) UnmarshalJSON(data []byte) error {
	var a textureInfoAlias
	rest, err := decodeObject(data, &a, "index", "extensions")
	if err != nil {
		return err
	}
	*t = TextureInfo(a)
	t.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TextureInfo) MarshalJSON() ([]byte, error) {
	return encodeObject(textureInfoAlias(t), t.Unknown)
}

// Rotation returns the KHR_texture_transform rotation, if one is set.
func (t *TextureInfo) Rotation() (float64, bool) {
	var tt struct {
		Rotation *float64 `json:"rotation"`
	}
	if ok, err := t.Extensions.decode(ExtTextureTransform, &tt); !ok || err != nil || tt.Rotation == nil {
		return 0, false
	}
	return *tt.Rotation, true
}

// SetRotation writes the KHR_texture_transform rotation, creating the
// transform when the slot has none. Other transform members are kept.
func (t *TextureInfo) SetRotation(rotation float64) error {
	var tt Fields
	if _, err := t.Extensions.decode(ExtTextureTransform, &tt); err != nil {
		return err
	}
	if tt == nil {
		tt = Fields{}
	}
	raw, err := json.Marshal(rotation)
	if err != nil {
		return err
	}
	tt["rotation"] = raw
	return t.Extensions.set(ExtTextureTransform, tt)
}

// Sheen returns the material's KHR_materials_sheen extension, or nil.
func (m *Material) Sheen() (*Sheen, error) {
	var s Sheen
	ok, err := m.Extensions.decode(ExtMaterialsSheen, &s)
	if !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

// SetSheen stores s as the material's KHR_materials_sheen extension.
func (m *Material) SetSheen(s *Sheen) error {
	return m.Extensions.set(ExtMaterialsSheen, s)
}

// EachTexture calls fn for every populated texture slot of the material.
// When fn returns false the slot is cleared.
func (m *Material) EachTexture(fn func(slot string, ti *TextureInfo) bool) error {
	visit := func(slot string, ti **TextureInfo) {
		if *ti == nil {
			return
		}
		if !fn(slot, *ti) {
			*ti = nil
		}
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		visit(SlotBaseColor, &pbr.BaseColorTexture)
		visit(SlotMetallicRoughness, &pbr.MetallicRoughnessTexture)
	}
	visit(SlotNormal, &m.NormalTexture)
	visit(SlotOcclusion, &m.OcclusionTexture)
	visit(SlotEmissive, &m.EmissiveTexture)

	sheen, err := m.Sheen()
	if err != nil || sheen == nil {
		return err
	}
	// fn may edit the decoded slots in place, so the extension is always
	// written back.
	visit(SlotSheenColor, &sheen.SheenColorTexture)
	visit(SlotSheenRoughness, &sheen.SheenRoughnessTexture)
	return m.SetSheen(sheen)
}

// Texture is a glTF texture.
type Texture struct {
	Name       string     `json:"name,omitempty"`
	Sampler    *int       `json:"sampler,omitempty"`
	Source     *int       `json:"source,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`

	Unknown Fields `json:"-"`
}

type textureAlias Texture

// UnmarshalJSON implements json.Unmarshaler.
func (t *Texture) UnmarshalJSON(data []byte) error {
	var a textureAlias
	rest, err := decodeObject(data, &a, "name", "sampler", "source", "extensions")
	if err != nil {
		return err
	}
	*t = Texture(a)
	t.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Texture) MarshalJSON() ([]byte, error) {
	return encodeObject(textureAlias(t), t.Unknown)
}

// Image is a glTF image. Pixel data references (uri, bufferView) are
// never interpreted.
type Image struct {
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`

	Unknown Fields `json:"-"`
}

type imageAlias Image

// UnmarshalJSON implements json.Unmarshaler.
func (i *Image) UnmarshalJSON(data []byte) error {
	var a imageAlias
	rest, err := decodeObject(data, &a, "name", "uri")
	if err != nil {
		return err
	}
	*i = Image(a)
	i.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (i Image) MarshalJSON() ([]byte, error) {
	return encodeObject(imageAlias(i), i.Unknown)
}

// Label returns the image name, falling back to the URI's base name
// without extension. Data URIs yield an empty label.
func (i *Image) Label() string {
	if i.Name != "" {
		return i.Name
	}
	if i.URI == "" || strings.HasPrefix(i.URI, "data:") {
		return ""
	}
	base := path.Base(i.URI)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Mesh is a glTF mesh.
type Mesh struct {
	Name       string       `json:"name,omitempty"`
	Primitives []*Primitive `json:"primitives,omitempty"`

	Unknown Fields `json:"-"`
}

type meshAlias Mesh

// UnmarshalJSON implements json.Unmarshaler.
func (m *Mesh) UnmarshalJSON(data []byte) error {
	var a meshAlias
	rest, err := decodeObject(data, &a, "name", "primitives")
	if err != nil {
		return err
	}
	*m = Mesh(a)
	m.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Mesh) MarshalJSON() ([]byte, error) {
	return encodeObject(meshAlias(m), m.Unknown)
}

// Primitive is a glTF mesh primitive.
type Primitive struct {
	Material   *int       `json:"material,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`

	Unknown Fields `json:"-"`
}

type primitiveAlias Primitive

// UnmarshalJSON implements json.Unmarshaler.
func (p *Primitive) UnmarshalJSON(data []byte) error {
	var a primitiveAlias
	rest, err := decodeObject(data, &a, "material", "extensions")
	if err != nil {
		return err
	}
	*p = Primitive(a)
	p.Unknown = rest
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Primitive) MarshalJSON() ([]byte, error) {
	return encodeObject(primitiveAlias(p), p.Unknown)
}

// Index returns a pointer to i, for optional index members.
func Index(i int) *int {
	return &i
}
