package pipeline

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

// ExportOptions configures one run of the export pipeline.
type ExportOptions struct {
	FileName          string
	ModelLabel        string
	ApplyMoodRotation bool
	Config            *matconfig.Document
	Conventions       Conventions
}

// Output is one exported single-variant document.
type Output struct {
	FileName string
	Variant  string
	Data     []byte
}

// VariantFileName names the export of variant from fileName. The base name
// and variant are joined without a separator; downstream tooling relies on
// this exact form.
func VariantFileName(fileName, variant string) string {
	base := matconfig.StripModelExtension(filepath.Base(fileName))
	return base + variant + ".gltf"
}

// ExportVariants produces one pruned document per variant that the
// configuration orders for opts.FileName and doc declares. doc is not
// modified. Variants the document does not declare are skipped; a variant
// that fails to export is reported in the returned error while the others
// are still returned.
func ExportVariants(doc *gltfdoc.Document, opts ExportOptions) ([]Output, error) {
	if opts.Config == nil {
		return nil, ErrNoConfiguration
	}
	log := logger.Log.With(zap.String("file", opts.FileName))

	names := matconfig.OrderedVariantNames(opts.Config.ResolveAssignments(opts.FileName))
	alternate := opts.ApplyMoodRotation &&
		opts.Conventions.AlternateBranch(opts.Config, opts.ModelLabel, opts.FileName)

	var (
		outputs []Output
		errs    error
	)
	for _, name := range names {
		vi, ok := doc.VariantIndex(name)
		if !ok {
			log.Debug("variant not declared in document, skipped", zap.String("variant", name))
			continue
		}
		data, err := exportVariant(doc, vi, opts, alternate)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("variant %q: %w", name, err))
			continue
		}
		outputs = append(outputs, Output{
			FileName: VariantFileName(opts.FileName, name),
			Variant:  name,
			Data:     data,
		})
	}
	return outputs, errs
}

func exportVariant(src *gltfdoc.Document, variant int, opts ExportOptions, alternate bool) ([]byte, error) {
	doc, err := src.Clone()
	if err != nil {
		return nil, err
	}

	err = doc.Primitives(func(_ *gltfdoc.Mesh, p *gltfdoc.Primitive) error {
		mappings, err := p.Mappings()
		if err != nil {
			return err
		}
		if m, ok := gltfdoc.MappingFor(mappings, variant); ok {
			p.Material = gltfdoc.Index(m.Material)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("baking variant: %w", err)
	}

	usage, err := doc.UsageClosure()
	if err != nil {
		return nil, fmt.Errorf("collecting usage: %w", err)
	}
	if err := doc.Prune(usage); err != nil {
		return nil, fmt.Errorf("pruning: %w", err)
	}
	doc.RemoveVariants()

	if opts.ApplyMoodRotation {
		n, err := ApplyMoodRotation(doc, alternate, opts.Conventions)
		if err != nil {
			return nil, fmt.Errorf("mood rotation: %w", err)
		}
		if n > 0 {
			doc.AddExtensionUsed(gltfdoc.ExtTextureTransform)
			doc.AddExtensionRequired(gltfdoc.ExtTextureTransform)
		}
	}
	return doc.Encode()
}
