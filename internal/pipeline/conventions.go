// Package pipeline implements the update and export pipelines that apply a
// material configuration to glTF documents.
package pipeline

import (
	"errors"

	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

// ErrNoConfiguration is returned when no configuration document is supplied.
var ErrNoConfiguration = errors.New("no material configuration supplied")

// Conventions holds the asset pipeline's naming conventions and constants.
type Conventions struct {
	AO gltfdoc.AONaming `yaml:"ao"`

	// MoodPrefix selects the materials whose textures get rotated.
	MoodPrefix string `yaml:"mood_prefix"`
	// PrimaryRotation and AlternateRotation are the two rotation values, in
	// radians, written by the mood rotation patcher.
	PrimaryRotation   float64 `yaml:"primary_rotation"`
	AlternateRotation float64 `yaml:"alternate_rotation"`
	// AlternateModel is the model catalog key whose files take the
	// alternate rotation.
	AlternateModel string `yaml:"alternate_model"`
	// UnrestrictedLabel is the model label that disables model gating.
	UnrestrictedLabel string `yaml:"unrestricted_label"`
}

// DefaultConventions returns the conventions of the furniture asset pipeline.
func DefaultConventions() Conventions {
	return Conventions{
		AO:                gltfdoc.DefaultAONaming(),
		MoodPrefix:        "MOO-",
		PrimaryRotation:   0,
		AlternateRotation: 1.56,
		AlternateModel:    "Blavalen",
		UnrestrictedLabel: "Regular",
	}
}

// AlternateBranch reports whether a file takes the alternate rotation: the
// alternate model's catalog lists the model label, or one of its entries is
// part of the file name.
func (c Conventions) AlternateBranch(cfg *matconfig.Document, modelLabel, fileName string) bool {
	if cfg == nil || c.AlternateModel == "" {
		return false
	}
	if modelLabel != "" && cfg.ModelContains(c.AlternateModel, modelLabel) {
		return true
	}
	return cfg.ModelMatchesFile(c.AlternateModel, fileName)
}

// Rotation returns the rotation value for the given branch.
func (c Conventions) Rotation(alternate bool) float64 {
	if alternate {
		return c.AlternateRotation
	}
	return c.PrimaryRotation
}

// Unrestricted reports whether modelLabel disables model gating.
func (c Conventions) Unrestricted(modelLabel string) bool {
	return modelLabel == "" || modelLabel == c.UnrestrictedLabel
}
