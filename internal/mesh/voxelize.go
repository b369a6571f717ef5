package mesh

import (
	"voxelshapes.ai/internal/geom"
)

const DefaultResolution = 8

// Probe directions are slightly off-axis so rays do not run along shared
// triangle edges of grid-aligned meshes.
var probeDirs = [3]geom.Vec3{
	{1, 0.000123, 0.000217},
	{0.000191, 1, 0.000113},
	{0.000137, 0.000173, 1},
}

// Voxelize samples res³ cell centres of the unit cell, marks the ones inside
// the mesh and merges them into boxes. Inside is the majority vote of three
// parity rays. Meshes that are not closed give unreliable results; such
// resources should list explicit boxes.
func Voxelize(m *Mesh, res int) geom.Volume {
	if res <= 0 {
		res = DefaultResolution
	}
	tris := m.Triangles()
	if len(tris) == 0 {
		return geom.Volume{}
	}
	g := newGrid(res)
	step := 1 / float64(res)
	for y := 0; y < res; y++ {
		for z := 0; z < res; z++ {
			for x := 0; x < res; x++ {
				p := geom.V((float64(x)+0.5)*step, (float64(y)+0.5)*step, (float64(z)+0.5)*step)
				if inside(tris, p) {
					g.set(x, y, z)
				}
			}
		}
	}
	return g.merge()
}

func inside(tris []Triangle, p geom.Vec3) bool {
	votes := 0
	for _, d := range probeDirs {
		n := 0
		for _, t := range tris {
			if rayHits(p, d, t) {
				n++
			}
		}
		if n%2 == 1 {
			votes++
		}
	}
	return votes >= 2
}

// rayHits is the Möller–Trumbore test for the half-line p + t·d, t > 0.
func rayHits(p, d geom.Vec3, tri Triangle) bool {
	const eps = 1e-12
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	h := d.Cross(e2)
	a := e1.Dot(h)
	if a > -eps && a < eps {
		return false
	}
	f := 1 / a
	s := p.Sub(tri[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}
	q := s.Cross(e1)
	v := f * d.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}
	return f*e2.Dot(q) > eps
}

type grid struct {
	n     int
	solid []bool
}

func newGrid(n int) *grid { return &grid{n: n, solid: make([]bool, n*n*n)} }

func (g *grid) idx(x, y, z int) int { return (y*g.n+z)*g.n + x }

func (g *grid) set(x, y, z int) { g.solid[g.idx(x, y, z)] = true }

func (g *grid) get(x, y, z int) bool { return g.solid[g.idx(x, y, z)] }

// merge grows each unvisited solid cell along x, then z, then y, clearing
// the cells it covers.
func (g *grid) merge() geom.Volume {
	n := g.n
	step := 1 / float64(n)
	var boxes []geom.Box
	for y := 0; y < n; y++ {
		for z := 0; z < n; z++ {
			for x := 0; x < n; x++ {
				if !g.get(x, y, z) {
					continue
				}
				w := 1
				for x+w < n && g.get(x+w, y, z) {
					w++
				}
				d := 1
				for z+d < n && g.rowSolid(x, w, y, z+d) {
					d++
				}
				h := 1
				for y+h < n && g.slabSolid(x, w, y+h, z, d) {
					h++
				}
				for yy := y; yy < y+h; yy++ {
					for zz := z; zz < z+d; zz++ {
						for xx := x; xx < x+w; xx++ {
							g.solid[g.idx(xx, yy, zz)] = false
						}
					}
				}
				boxes = append(boxes, geom.NewBox(
					float64(x)*step, float64(y)*step, float64(z)*step,
					float64(x+w)*step, float64(y+h)*step, float64(z+d)*step))
			}
		}
	}
	return geom.NewVolume(boxes...)
}

func (g *grid) rowSolid(x, w, y, z int) bool {
	for xx := x; xx < x+w; xx++ {
		if !g.get(xx, y, z) {
			return false
		}
	}
	return true
}

func (g *grid) slabSolid(x, w, y, z, d int) bool {
	for zz := z; zz < z+d; zz++ {
		if !g.rowSolid(x, w, y, zz) {
			return false
		}
	}
	return true
}
