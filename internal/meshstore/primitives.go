package meshstore

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
)

const (
	PrimitivePrefix = "prim/"

	defaultPrimitiveCells = 16
	boundaryTolerance     = 1e-4
)

type primitive struct {
	build func() (sdf.SDF3, error)
	// solid primitives are exactly their bounding box.
	solid bool
}

var primitives = map[string]primitive{
	"box": {build: func() (sdf.SDF3, error) {
		return cellBox(1, 1, 1)
	}, solid: true},
	"slab": {build: func() (sdf.SDF3, error) {
		return cellBox(1, 0.5, 1)
	}, solid: true},
	"pillar": {build: func() (sdf.SDF3, error) {
		s, err := sdf.Cylinder3D(1, 0.25, 0)
		if err != nil {
			return nil, err
		}
		m := sdf.Translate3d(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}).Mul(sdf.RotateX(math.Pi / 2))
		return sdf.Transform3D(s, m), nil
	}},
}

// cellBox is a box with its minimum corner at the cell origin.
func cellBox(x, y, z float64) (sdf.SDF3, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})), nil
}

// Primitives serves the built-in prim/* meshes, tessellated with marching
// cubes.
type Primitives struct {
	cells int
}

func NewPrimitives(cells int) *Primitives {
	if cells <= 0 {
		cells = defaultPrimitiveCells
	}
	return &Primitives{cells: cells}
}

func (p *Primitives) Names() []string {
	out := make([]string, 0, len(primitives))
	for n := range primitives {
		out = append(out, PrimitivePrefix+n)
	}
	sort.Strings(out)
	return out
}

func (p *Primitives) Open(name string) ([]byte, error) {
	prim, ok := primitives[strings.TrimPrefix(name, PrimitivePrefix)]
	if !ok || !strings.HasPrefix(name, PrimitivePrefix) {
		return nil, fmt.Errorf("%s: %w", name, mesh.ErrMeshNotFound)
	}
	m, err := p.tessellate(name, prim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return mesh.Encode(m)
}

func (p *Primitives) tessellate(name string, prim primitive) (*mesh.Mesh, error) {
	s, err := prim.build()
	if err != nil {
		return nil, err
	}
	m := &mesh.Mesh{Name: name}
	for _, tri := range render.ToTriangles(s, render.NewMarchingCubesUniform(p.cells)) {
		n := tri.Normal()
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			// degenerate sliver
			continue
		}
		f := mesh.Face{
			Vertices: make([]geom.Vec3, 3),
			Normal:   geom.V(n.X, n.Y, n.Z),
		}
		for j := 0; j < 3; j++ {
			v := tri[j]
			f.Vertices[j] = geom.V(v.X, v.Y, v.Z)
		}
		if d := boundaryFace(f.Vertices); d != geom.None {
			f.Cull = d.String()
		}
		m.Faces = append(m.Faces, f)
	}
	if prim.solid {
		bb := s.BoundingBox()
		m.Boxes = [][6]float64{{bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z}}
	}
	return m, nil
}

// boundaryFace reports the cell face all vertices lie on, if any.
func boundaryFace(vs []geom.Vec3) geom.Direction {
	for _, d := range geom.Directions {
		axis, at := 0, 0.0
		off := d.Vec()
		for i := 0; i < 3; i++ {
			if off[i] != 0 {
				axis = i
				if off[i] > 0 {
					at = 1
				}
			}
		}
		on := true
		for _, v := range vs {
			if math.Abs(v[axis]-at) > boundaryTolerance {
				on = false
				break
			}
		}
		if on {
			return d
		}
	}
	return geom.None
}
