package gltfdoc

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/multierr"
)

// threeMaterials has materials A, B, C, each with its own texture and
// image; only B is assigned to a primitive while A and C are reachable
// only through variant mappings.
const threeMaterials = `{
  "asset": {"version": "2.0"},
  "materials": [
    {"name": "A", "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}},
    {"name": "B", "pbrMetallicRoughness": {"baseColorTexture": {"index": 1}}, "normalTexture": {"index": 2}},
    {"name": "C", "pbrMetallicRoughness": {"baseColorTexture": {"index": 2}}}
  ],
  "textures": [
    {"name": "tA", "source": 0},
    {"name": "tB", "source": 1},
    {"name": "tC", "source": 2}
  ],
  "images": [
    {"uri": "a.png"},
    {"uri": "b.png"},
    {"uri": "c.png"}
  ],
  "meshes": [
    {"name": "Body", "primitives": [
      {"material": 1, "extensions": {"KHR_materials_variants": {"mappings": [
        {"material": 0, "variants": [0]},
        {"material": 2, "variants": [1]}
      ]}}}
    ]}
  ],
  "extensions": {"KHR_materials_variants": {"variants": [{"name": "Red"}, {"name": "Blue"}]}},
  "extensionsUsed": ["KHR_materials_variants"]
}`

func TestContiguous(t *testing.T) {
	m := Contiguous([]int{7, 2, 7, 4})
	want := IndexMap{2: 0, 4: 1, 7: 2}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("expected %v, got %v", want, m)
	}
	if _, ok := m.Lookup(3); ok {
		t.Error("unlisted index must not resolve")
	}
}

func TestMergeMaterials(t *testing.T) {
	ref := mustParse(t, threeMaterials)

	merge, err := MergeMaterials(ref, []string{"C", "Missing", "A", "C"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	var names []string
	for _, m := range merge.Materials {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"C", "A", "B"}) {
		t.Errorf("unexpected merged order %v", names)
	}
	if !reflect.DeepEqual(merge.OldToNew, IndexMap{2: 0, 0: 1, 1: 2}) {
		t.Errorf("unexpected index map %v", merge.OldToNew)
	}
	if merge.ByName["B"] != 2 {
		t.Errorf("expected B at 2, got %d", merge.ByName["B"])
	}
	if !reflect.DeepEqual(merge.Missing, []string{"Missing"}) {
		t.Errorf("unexpected missing list %v", merge.Missing)
	}

	merge.Materials[0].Name = "Mutated"
	if ref.Materials[2].Name != "C" {
		t.Error("merge must not share materials with the reference")
	}
}

func TestRemapMaterials(t *testing.T) {
	doc := mustParse(t, threeMaterials)

	// Swap A and B; drop C.
	remap := IndexMap{0: 1, 1: 0}
	dropped, err := doc.RemapMaterials(remap.Lookup)
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped reference, got %d", dropped)
	}

	p := doc.Meshes[0].Primitives[0]
	if p.Material == nil || *p.Material != 0 {
		t.Errorf("expected primitive material 0, got %v", p.Material)
	}
	mappings, err := p.Mappings()
	if err != nil {
		t.Fatal(err)
	}
	want := []Mapping{{Material: 1, Variants: []int{0}}}
	if !reflect.DeepEqual(mappings, want) {
		t.Errorf("expected %v, got %v", want, mappings)
	}

	none := IndexMap{}
	if _, err := doc.RemapMaterials(none.Lookup); err != nil {
		t.Fatal(err)
	}
	if p.Material != nil {
		t.Error("unmapped primitive material should be removed")
	}
	if p.HasMappings() {
		t.Error("primitive with no surviving mappings should lose the extension")
	}
}

func TestUsageClosureAndPrune(t *testing.T) {
	doc := mustParse(t, threeMaterials)
	doc.RemoveVariants()

	u, err := doc.UsageClosure()
	if err != nil {
		t.Fatal(err)
	}
	want := Usage{Materials: []int{1}, Textures: []int{1, 2}, Images: []int{1, 2}}
	if !reflect.DeepEqual(u, want) {
		t.Fatalf("expected usage %+v, got %+v", want, u)
	}

	if err := doc.Prune(u); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(doc.Materials) != 1 || doc.Materials[0].Name != "B" {
		t.Fatalf("expected only B to remain, got %d materials", len(doc.Materials))
	}
	if got := *doc.Meshes[0].Primitives[0].Material; got != 0 {
		t.Errorf("expected primitive material 0, got %d", got)
	}
	b := doc.Materials[0]
	if b.PBRMetallicRoughness.BaseColorTexture.Index != 0 || b.NormalTexture.Index != 1 {
		t.Errorf("texture slots not reindexed: base %d normal %d",
			b.PBRMetallicRoughness.BaseColorTexture.Index, b.NormalTexture.Index)
	}
	if len(doc.Textures) != 2 || doc.Textures[0].Name != "tB" || *doc.Textures[1].Source != 1 {
		t.Errorf("textures not pruned correctly")
	}
	if len(doc.Images) != 2 || doc.Images[0].URI != "b.png" || doc.Images[1].URI != "c.png" {
		t.Errorf("images not pruned correctly")
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("pruned document failed validation: %v", err)
	}
}

func TestVariantExtension(t *testing.T) {
	doc := mustParse(t, threeMaterials)

	names, err := doc.VariantNames()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"Red", "Blue"}) {
		t.Errorf("unexpected variants %v", names)
	}
	if i, ok := doc.VariantIndex("Blue"); !ok || i != 1 {
		t.Errorf("expected Blue at 1, got %d %v", i, ok)
	}
	if !doc.HasVariantMappings() {
		t.Error("expected mappings")
	}

	mappings, _ := doc.Meshes[0].Primitives[0].Mappings()
	if m, ok := MappingFor(mappings, 1); !ok || m.Material != 2 {
		t.Errorf("expected Blue to map to material 2, got %+v %v", m, ok)
	}
	if _, ok := MappingFor(mappings, 5); ok {
		t.Error("unknown variant must not resolve")
	}

	doc.RemoveVariants()
	if doc.HasVariantMappings() || doc.Extensions != nil || doc.UsesExtension(ExtMaterialsVariants) {
		t.Error("RemoveVariants left variant data behind")
	}
	out := roundTrip(t, doc)
	if _, ok := out["extensions"]; ok {
		t.Error("empty extensions object should not be encoded")
	}
}

func TestSetVariantNames(t *testing.T) {
	doc := mustParse(t, `{"asset": {"version": "2.0"}}`)

	if err := doc.SetVariantNames([]string{"Oak", "Walnut"}); err != nil {
		t.Fatal(err)
	}
	var ext struct {
		Variants []struct {
			Name string `json:"name"`
		} `json:"variants"`
	}
	if err := json.Unmarshal(doc.Extensions[ExtMaterialsVariants], &ext); err != nil {
		t.Fatal(err)
	}
	if len(ext.Variants) != 2 || ext.Variants[1].Name != "Walnut" {
		t.Errorf("unexpected extension payload %s", doc.Extensions[ExtMaterialsVariants])
	}

	doc.AddExtensionUsed(ExtMaterialsVariants)
	if err := doc.SetVariantNames(nil); err != nil {
		t.Fatal(err)
	}
	if doc.Extensions != nil || doc.UsesExtension(ExtMaterialsVariants) {
		t.Error("empty variant list should remove the extension")
	}
}

func TestValidate(t *testing.T) {
	if err := mustParse(t, threeMaterials).Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	doc := mustParse(t, threeMaterials)
	doc.Meshes[0].Primitives[0].Material = Index(9)
	doc.Textures[0].Source = Index(3)
	doc.Materials[2].PBRMetallicRoughness.BaseColorTexture.Index = -1
	if err := doc.Meshes[0].Primitives[0].SetMappings([]Mapping{{Material: 0, Variants: []int{4}}}); err != nil {
		t.Fatal(err)
	}

	err := doc.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("expected 4 problems, got %d: %v", n, err)
	}
}
