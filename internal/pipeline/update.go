package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

// Progress checkpoints reported by Update.
const (
	progressPrepared   = 0.05
	progressAO         = 0.2
	progressMerged     = 0.4
	progressRemapped   = 0.55
	progressAssigned   = 0.65
	progressRotated    = 0.75
	progressVariants   = 0.9
	progressSerialized = 1.0
)

// UpdateOptions configures one run of the update pipeline.
type UpdateOptions struct {
	ModelLabel        string
	ApplyVariants     bool
	ApplyMoodRotation bool
	Config            *matconfig.Document
	// FileName is the target's file name, used for mesh group matching and
	// the rotation branch.
	FileName    string
	Conventions Conventions
	// Progress, when set, receives fixed checkpoints rising from 0 to 1.
	Progress func(float64)
}

// Update merges the reference document's materials, textures, images and
// samplers into target and returns the serialized result. target is
// modified in place; reference is only read.
func Update(reference, target *gltfdoc.Document, opts UpdateOptions) ([]byte, error) {
	if opts.Config == nil {
		return nil, ErrNoConfiguration
	}
	report := func(p float64) {
		if opts.Progress != nil {
			opts.Progress(p)
		}
	}
	log := logger.Log.With(zap.String("file", opts.FileName))

	target.EnsureArrays()
	ensureExtensions(target)
	report(progressPrepared)

	textures, images, err := gltfdoc.PreserveAO(target, reference, opts.Conventions.AO)
	if err != nil {
		return nil, err
	}
	report(progressAO)

	extensions, err := gltfdoc.DeepCopy(reference.Extensions)
	if err != nil {
		return nil, fmt.Errorf("copying extensions: %w", err)
	}
	target.Extensions = extensions

	merge, err := gltfdoc.MergeMaterials(reference, opts.Config.MaterialNames())
	if err != nil {
		return nil, err
	}
	for _, name := range merge.Missing {
		log.Debug("configured material not in reference", zap.String("material", name))
	}
	report(progressMerged)

	original := target.Materials
	dropped, err := target.RemapMaterials(func(old int) (int, bool) {
		if n, ok := merge.OldToNew.Lookup(old); ok {
			return n, true
		}
		// Past the reference's range, fall back to the target's own name.
		if old >= 0 && old < len(original) && original[old] != nil {
			n, ok := merge.ByName[original[old].Name]
			return n, ok
		}
		return 0, false
	})
	if err != nil {
		return nil, fmt.Errorf("remapping materials: %w", err)
	}
	if dropped > 0 {
		log.Warn("material references without a merged material were dropped", zap.Int("count", dropped))
	}
	report(progressRemapped)

	target.Materials = merge.Materials
	target.Textures = textures
	target.Images = images
	if target.Samplers, err = gltfdoc.DeepCopy(reference.Samplers); err != nil {
		return nil, fmt.Errorf("copying samplers: %w", err)
	}
	report(progressAssigned)

	if opts.ApplyMoodRotation {
		alternate := opts.Conventions.AlternateBranch(opts.Config, opts.ModelLabel, opts.FileName)
		n, err := ApplyMoodRotation(target, alternate, opts.Conventions)
		if err != nil {
			return nil, fmt.Errorf("mood rotation: %w", err)
		}
		log.Debug("mood rotation applied", zap.Bool("alternate", alternate), zap.Int("slots", n))
	}
	report(progressRotated)

	if opts.ApplyVariants {
		res, err := ApplyVariants(target, opts.Config, opts.FileName)
		if err != nil {
			return nil, fmt.Errorf("applying variants: %w", err)
		}
		log.Debug("variants applied",
			zap.Strings("variants", res.Variants), zap.Int("mapped", res.Mapped), zap.Int("skipped", res.Skipped))
	}
	report(progressVariants)

	ensureExtensions(target)

	data, err := target.Encode()
	if err != nil {
		return nil, err
	}
	report(progressSerialized)
	return data, nil
}

// ensureExtensions declares KHR_texture_transform as used and required, and
// KHR_materials_variants as used while the document carries it. It is
// idempotent.
func ensureExtensions(doc *gltfdoc.Document) {
	doc.AddExtensionUsed(gltfdoc.ExtTextureTransform)
	doc.AddExtensionRequired(gltfdoc.ExtTextureTransform)
	if _, ok := doc.Extensions[gltfdoc.ExtMaterialsVariants]; ok || doc.HasVariantMappings() {
		doc.AddExtensionUsed(gltfdoc.ExtMaterialsVariants)
	}
}
