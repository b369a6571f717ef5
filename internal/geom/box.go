package geom

import (
	"fmt"
	"math"
)

// Box is an axis-aligned box with Min <= Max on every axis.
type Box struct {
	Min, Max Vec3
}

// NewBox orders the corners so Min <= Max.
func NewBox(x0, y0, z0, x1, y1, z1 float64) Box {
	a, b := Vec3{x0, y0, z0}, Vec3{x1, y1, z1}
	return Box{Min: minVec(a, b), Max: maxVec(a, b)}
}

func BoxFromArray(a [6]float64) Box { return NewBox(a[0], a[1], a[2], a[3], a[4], a[5]) }

// UnitBox is the full cell in local space.
var UnitBox = Box{Max: Vec3{1, 1, 1}}

func (b Box) Array() [6]float64 {
	return [6]float64{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]}
}

func (b Box) Size() Vec3 { return b.Max.Sub(b.Min) }

func (b Box) Volume() float64 {
	s := b.Size()
	return s[0] * s[1] * s[2]
}

// Degenerate boxes have no extent on some axis.
func (b Box) Degenerate() bool {
	s := b.Size()
	return s[0] <= Epsilon || s[1] <= Epsilon || s[2] <= Epsilon
}

func (b Box) Offset(v Vec3) Box { return Box{Min: b.Min.Add(v), Max: b.Max.Add(v)} }

func (b Box) Union(o Box) Box { return Box{Min: minVec(b.Min, o.Min), Max: maxVec(b.Max, o.Max)} }

// Intersects reports overlap with positive volume.
func (b Box) Intersects(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] <= o.Min[i]+Epsilon || o.Max[i] <= b.Min[i]+Epsilon {
			return false
		}
	}
	return true
}

func (b Box) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i]-Epsilon || p[i] > b.Max[i]+Epsilon {
			return false
		}
	}
	return true
}

func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo[0], lo[1], lo[2]},
		{hi[0], lo[1], lo[2]},
		{lo[0], hi[1], lo[2]},
		{hi[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{hi[0], lo[1], hi[2]},
		{lo[0], hi[1], hi[2]},
		{hi[0], hi[1], hi[2]},
	}
}

func (b Box) ApproxEqual(o Box, eps float64) bool {
	return ApproxVec(b.Min, o.Min, eps) && ApproxVec(b.Max, o.Max, eps)
}

// clip intersects the segment start + t·d, t in [tmin,tmax], with the slab
// planes and reports the entry parameter and entry face.
func (b Box) clip(start, d Vec3, tmin, tmax float64) (float64, Direction, bool) {
	face := None
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < Epsilon {
			if start[i] < b.Min[i] || start[i] > b.Max[i] {
				return 0, None, false
			}
			continue
		}
		inv := 1 / d[i]
		t0 := (b.Min[i] - start[i]) * inv
		t1 := (b.Max[i] - start[i]) * inv
		near := axisFace(i, false)
		if t0 > t1 {
			t0, t1 = t1, t0
			near = axisFace(i, true)
		}
		if t0 > tmin {
			tmin, face = t0, near
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, None, false
		}
	}
	return tmin, face, true
}

// axisFace is the face on axis i, on the positive or negative side.
func axisFace(i int, positive bool) Direction {
	switch i {
	case 0:
		if positive {
			return East
		}
		return West
	case 1:
		if positive {
			return Up
		}
		return Down
	default:
		if positive {
			return South
		}
		return North
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[%g,%g,%g → %g,%g,%g]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
