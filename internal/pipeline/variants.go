package pipeline

import (
	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

// VariantResult summarizes a variant application.
type VariantResult struct {
	Variants []string // declared variant names, in index order
	Assigned int      // primitives whose default material was set
	Mapped   int      // primitives that received mappings
	Skipped  int      // unresolvable material or variant references
}

// ApplyVariants rewrites the document's KHR_materials_variants setup from
// the assignments in effect for fileName. Existing primitive mappings are
// discarded. Meshes without an assignment keep their material. Material and
// variant references that do not resolve are logged and skipped.
func ApplyVariants(doc *gltfdoc.Document, cfg *matconfig.Document, fileName string) (*VariantResult, error) {
	assignments := cfg.ResolveAssignments(fileName)
	names := matconfig.OrderedVariantNames(assignments)
	res := &VariantResult{Variants: names}

	if err := doc.SetVariantNames(names); err != nil {
		return nil, err
	}
	variantIndex := make(map[string]int, len(names))
	for i, n := range names {
		variantIndex[n] = i
	}

	for _, mesh := range doc.Meshes {
		if mesh == nil {
			continue
		}
		for _, p := range mesh.Primitives {
			if p != nil {
				p.ClearMappings()
			}
		}

		a, ok := assignments.Get(mesh.Name)
		if !ok {
			logger.Debug("mesh has no assignment", zap.String("file", fileName), zap.String("mesh", mesh.Name))
			continue
		}

		defaultIdx, hasDefault := -1, false
		if a.DefaultMaterial != "" {
			defaultIdx, hasDefault = doc.MaterialIndex(a.DefaultMaterial)
			if !hasDefault {
				res.Skipped++
				logger.Warn("default material not found",
					zap.String("file", fileName), zap.String("mesh", mesh.Name), zap.String("material", a.DefaultMaterial))
			}
		}

		var mappings []gltfdoc.Mapping
		for _, v := range a.Variants {
			matIdx, ok := doc.MaterialIndex(v.Material)
			if !ok {
				res.Skipped++
				logger.Warn("variant material not found",
					zap.String("file", fileName), zap.String("mesh", mesh.Name),
					zap.String("variant", v.Name), zap.String("material", v.Material))
				continue
			}
			vi, ok := variantIndex[v.Name]
			if !ok {
				res.Skipped++
				logger.Warn("variant not declared",
					zap.String("file", fileName), zap.String("mesh", mesh.Name), zap.String("variant", v.Name))
				continue
			}
			mappings = append(mappings, gltfdoc.Mapping{Material: matIdx, Variants: []int{vi}})
		}

		for _, p := range mesh.Primitives {
			if p == nil {
				continue
			}
			if hasDefault {
				p.Material = gltfdoc.Index(defaultIdx)
				res.Assigned++
			}
			if len(mappings) == 0 {
				continue
			}
			if err := p.SetMappings(mappings); err != nil {
				return nil, err
			}
			res.Mapped++
		}
	}

	if !doc.HasVariantMappings() {
		doc.RemoveVariants()
		res.Variants = nil
		return res, nil
	}
	doc.AddExtensionUsed(gltfdoc.ExtMaterialsVariants)
	return res, nil
}
