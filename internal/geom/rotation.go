package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation is a 3x3 rotation. Grid rotations (the 24 signed axis
// permutations) are kept as exact integer matrices; anything else is a free
// rotation. The zero value is the identity.
type Rotation struct {
	m    mgl64.Mat3
	free bool
}

var IdentityRotation = Rotation{m: mgl64.Ident3()}

// rows builds a column-major matrix from three rows.
func rows(r0, r1, r2 Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		r0[0], r1[0], r2[0],
		r0[1], r1[1], r2[1],
		r0[2], r1[2], r2[2],
	}
}

// NormalizeQuarterTurns converts a rotation value into a quarter-turn count
// in [0,3]. Multiples of 90 outside [-3,3] are read as degrees.
func NormalizeQuarterTurns(r int) int {
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}

// QuarterTurnsY turns clockwise seen from above: north → east → south → west.
func QuarterTurnsY(n int) Rotation {
	switch NormalizeQuarterTurns(n) {
	case 0:
		return IdentityRotation
	case 1:
		return Rotation{m: rows(Vec3{0, 0, -1}, Vec3{0, 1, 0}, Vec3{1, 0, 0})}
	case 2:
		return Rotation{m: rows(Vec3{-1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, -1})}
	default:
		return Rotation{m: rows(Vec3{0, 0, 1}, Vec3{0, 1, 0}, Vec3{-1, 0, 0})}
	}
}

// QuarterTurnsX tips the cell forward: up → north → down → south.
func QuarterTurnsX(n int) Rotation {
	switch NormalizeQuarterTurns(n) {
	case 0:
		return IdentityRotation
	case 1:
		return Rotation{m: rows(Vec3{1, 0, 0}, Vec3{0, 0, 1}, Vec3{0, -1, 0})}
	case 2:
		return Rotation{m: rows(Vec3{1, 0, 0}, Vec3{0, -1, 0}, Vec3{0, 0, -1})}
	default:
		return Rotation{m: rows(Vec3{1, 0, 0}, Vec3{0, 0, -1}, Vec3{0, 1, 0})}
	}
}

// QuarterTurnsZ rolls the cell: up → west → down → east.
func QuarterTurnsZ(n int) Rotation {
	switch NormalizeQuarterTurns(n) {
	case 0:
		return IdentityRotation
	case 1:
		return Rotation{m: rows(Vec3{0, -1, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1})}
	case 2:
		return Rotation{m: rows(Vec3{-1, 0, 0}, Vec3{0, -1, 0}, Vec3{0, 0, 1})}
	default:
		return Rotation{m: rows(Vec3{0, 1, 0}, Vec3{-1, 0, 0}, Vec3{0, 0, 1})}
	}
}

// FreeRotation wraps an arbitrary rotation matrix. Matrices that are within
// Epsilon of a grid rotation are snapped onto it.
func FreeRotation(m mgl64.Mat3) Rotation {
	if g, ok := gridSnap(m); ok {
		return Rotation{m: g}
	}
	return Rotation{m: m, free: true}
}

// AxisAngle is a free rotation of angle radians about axis.
func AxisAngle(axis Vec3, angle float64) Rotation {
	return FreeRotation(mgl64.HomogRotate3D(angle, axis.Normalize()).Mat3())
}

func gridSnap(m mgl64.Mat3) (mgl64.Mat3, bool) {
	var out mgl64.Mat3
	for i, v := range m {
		r := math.Round(v)
		if math.Abs(v-r) > Epsilon || r < -1 || r > 1 {
			return m, false
		}
		out[i] = snap(r)
	}
	return out, true
}

func (r Rotation) Matrix() mgl64.Mat3 {
	if r.m == (mgl64.Mat3{}) {
		return mgl64.Ident3()
	}
	return r.m
}

// GridAligned reports whether boxes map onto boxes exactly.
func (r Rotation) GridAligned() bool { return !r.free }

// Mul returns the rotation that applies o first, then r.
func (r Rotation) Mul(o Rotation) Rotation {
	m := r.Matrix().Mul3(o.Matrix())
	if !r.free && !o.free {
		g, _ := gridSnap(m)
		return Rotation{m: g}
	}
	return FreeRotation(m)
}

func (r Rotation) Apply(v Vec3) Vec3 { return r.Matrix().Mul3x1(v) }

// Inverse of a rotation is its transpose.
func (r Rotation) Inverse() Rotation {
	return Rotation{m: r.Matrix().Transpose(), free: r.free}
}

func (r Rotation) ApproxEqual(o Rotation, eps float64) bool {
	a, b := r.Matrix(), o.Matrix()
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
