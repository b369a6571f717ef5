package mesh

import (
	"sync"

	"voxelshapes.ai/internal/geom"
)

// Model is a loaded mesh plus its local collision volume, derived on first
// use and kept for the model's lifetime.
type Model struct {
	mesh *Mesh
	res  int

	once   sync.Once
	volume geom.Volume
}

func NewModel(m *Mesh, res int) *Model {
	return &Model{mesh: m, res: res}
}

func (m *Model) Name() string { return m.mesh.Name }

// Mesh must not be modified by callers.
func (m *Model) Mesh() *Mesh { return m.mesh }

func (m *Model) CollisionVolume() geom.Volume {
	m.once.Do(func() {
		if len(m.mesh.Boxes) > 0 {
			boxes := make([]geom.Box, 0, len(m.mesh.Boxes))
			for _, b := range m.mesh.Boxes {
				boxes = append(boxes, geom.BoxFromArray(b))
			}
			m.volume = geom.NewVolume(boxes...)
			return
		}
		m.volume = Voxelize(m.mesh, m.res)
	})
	return m.volume
}

// Shape is the collision volume mapped through t.
func (m *Model) Shape(t geom.Transform) geom.Volume {
	return t.ApplyVolume(m.CollisionVolume())
}
