package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
)

// ApplyMoodRotation sets the KHR_texture_transform rotation on the normal,
// base color and sheen color textures of every mood material. Textures that
// sample an ambient occlusion image are left alone. It returns the number of
// slots written.
func ApplyMoodRotation(doc *gltfdoc.Document, alternate bool, conv Conventions) (int, error) {
	if conv.MoodPrefix == "" {
		return 0, nil
	}
	rotation := conv.Rotation(alternate)
	patched := 0

	patch := func(m *gltfdoc.Material, slot string, ti *gltfdoc.TextureInfo) error {
		if ti == nil {
			return nil
		}
		if conv.AO.IsAOTexture(doc, ti.Index) {
			logger.Debug("rotation skipped for AO texture",
				zap.String("material", m.Name), zap.String("slot", slot), zap.Int("texture", ti.Index))
			return nil
		}
		if err := ti.SetRotation(rotation); err != nil {
			return fmt.Errorf("material %q %s: %w", m.Name, slot, err)
		}
		patched++
		return nil
	}

	for _, m := range doc.Materials {
		if m == nil || !strings.HasPrefix(m.Name, conv.MoodPrefix) {
			continue
		}
		if err := patch(m, gltfdoc.SlotNormal, m.NormalTexture); err != nil {
			return patched, err
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if err := patch(m, gltfdoc.SlotBaseColor, pbr.BaseColorTexture); err != nil {
				return patched, err
			}
		}

		sheen, err := m.Sheen()
		if err != nil {
			return patched, fmt.Errorf("material %q: %w", m.Name, err)
		}
		if sheen == nil || sheen.SheenColorTexture == nil {
			continue
		}
		if err := patch(m, gltfdoc.SlotSheenColor, sheen.SheenColorTexture); err != nil {
			return patched, err
		}
		if err := m.SetSheen(sheen); err != nil {
			return patched, fmt.Errorf("material %q: %w", m.Name, err)
		}
	}
	return patched, nil
}
