// Package geom holds the value types shared by mesh, orientation and shape
// code: vectors, grid rotations, affine transforms, boxes and volumes.
//
// Everything in this package is immutable once constructed and safe to share
// between goroutines without synchronization.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in cell/world units.
type Vec3 = mgl64.Vec3

// Epsilon is the tolerance used for grid snapping and approximate equality.
const Epsilon = 1e-9

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// CellCenter is the centre of the unit cell in local space.
var CellCenter = Vec3{0.5, 0.5, 0.5}

// Pos is an integer grid position.
type Pos struct {
	X, Y, Z int
}

func P(x, y, z int) Pos { return Pos{X: x, Y: y, Z: z} }

func (p Pos) Vec() Vec3 { return Vec3{float64(p.X), float64(p.Y), float64(p.Z)} }

func (p Pos) Add(d Direction) Pos {
	o := d.Offset()
	return Pos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p Pos) Array() [3]int { return [3]int{p.X, p.Y, p.Z} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

func PosFromArray(a [3]int) Pos { return Pos{X: a[0], Y: a[1], Z: a[2]} }

// snap rounds values within Epsilon of an integer onto it and clears -0.
func snap(f float64) float64 {
	r := math.Round(f)
	if math.Abs(f-r) < Epsilon {
		f = r
	}
	if f == 0 {
		return 0
	}
	return f
}

func minVec(a, b Vec3) Vec3 {
	return Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b Vec3) Vec3 {
	return Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// ApproxVec compares component-wise with an absolute tolerance.
func ApproxVec(a, b Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
