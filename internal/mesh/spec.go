package mesh

import "voxelshapes.ai/internal/geom"

// Spec names the mesh a cell configuration is drawn with. LocalOrigin is
// passed to the orientation handler; Textures are per tint, primary first.
type Spec struct {
	MeshName    string    `json:"mesh" yaml:"mesh"`
	LocalOrigin geom.Vec3 `json:"origin,omitempty" yaml:"origin,omitempty"`
	Textures    []string  `json:"textures,omitempty" yaml:"textures,omitempty"`
}

func (s Spec) IsZero() bool { return s.MeshName == "" }

// Texture returns the texture for a tint, clamped to the last one listed.
func (s Spec) Texture(tint int) string {
	if len(s.Textures) == 0 {
		return ""
	}
	if tint < 0 {
		tint = 0
	}
	if tint >= len(s.Textures) {
		tint = len(s.Textures) - 1
	}
	return s.Textures[tint]
}
