package mesh

import "voxelshapes.ai/internal/geom"

// Cuboid builds a closed six-quad mesh of b with every face on the given
// tint. Faces lying on the cell boundary cull against that side.
func Cuboid(name string, b geom.Box, tint int) *Mesh {
	x0, y0, z0 := b.Min[0], b.Min[1], b.Min[2]
	x1, y1, z1 := b.Max[0], b.Max[1], b.Max[2]
	v := geom.V
	quads := []struct {
		d       geom.Direction
		onCell  bool
		corners [4]geom.Vec3
	}{
		{geom.Down, y0 == 0, [4]geom.Vec3{v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1)}},
		{geom.Up, y1 == 1, [4]geom.Vec3{v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0)}},
		{geom.North, z0 == 0, [4]geom.Vec3{v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0)}},
		{geom.South, z1 == 1, [4]geom.Vec3{v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1)}},
		{geom.West, x0 == 0, [4]geom.Vec3{v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0)}},
		{geom.East, x1 == 1, [4]geom.Vec3{v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1)}},
	}
	m := &Mesh{Name: name}
	for _, q := range quads {
		f := Face{
			Vertices: q.corners[:],
			UVs:      [][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
			Normal:   q.d.Vec(),
			Tint:     tint,
		}
		if q.onCell {
			f.Cull = q.d.String()
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}
