package geom

import "fmt"

// Transform is a rotation followed by a translation: p ↦ R·p + T.
// The zero value is the identity.
type Transform struct {
	R Rotation
	T Vec3
}

var Identity = Transform{R: IdentityRotation}

func Translation(v Vec3) Transform { return Transform{R: IdentityRotation, T: v} }

func RotationOf(r Rotation) Transform { return Transform{R: r} }

// AboutPoint rotates around c instead of the origin.
func AboutPoint(r Rotation, c Vec3) Transform {
	return Translation(c).Compose(RotationOf(r)).Compose(Translation(c.Mul(-1)))
}

// Compose returns the transform that applies o first, then t.
func (t Transform) Compose(o Transform) Transform {
	return Transform{
		R: t.R.Mul(o.R),
		T: t.R.Apply(o.T).Add(t.T),
	}
}

// Translate moves by v in t's local frame.
func (t Transform) Translate(v Vec3) Transform { return t.Compose(Translation(v)) }

// Rotate rotates in t's local frame.
func (t Transform) Rotate(r Rotation) Transform { return t.Compose(RotationOf(r)) }

func (t Transform) Apply(p Vec3) Vec3 { return t.R.Apply(p).Add(t.T) }

// ApplyDir transforms a direction; translation does not apply.
func (t Transform) ApplyDir(d Vec3) Vec3 { return t.R.Apply(d) }

// ApplyFace maps a grid face through the rotation.
func (t Transform) ApplyFace(d Direction) Direction {
	if !d.Valid() {
		return d
	}
	return Nearest(t.ApplyDir(d.Vec()))
}

// ApplyBox maps the eight corners and returns their bounds. For grid
// rotations this is exact; for free rotations it is the enclosing box.
func (t Transform) ApplyBox(b Box) Box {
	cs := b.Corners()
	lo := t.Apply(cs[0])
	hi := lo
	for _, c := range cs[1:] {
		p := t.Apply(c)
		lo = minVec(lo, p)
		hi = maxVec(hi, p)
	}
	return Box{Min: lo, Max: hi}
}

// ApplyVolume returns a new volume; v is left untouched.
func (t Transform) ApplyVolume(v Volume) Volume {
	if len(v.boxes) == 0 {
		return Volume{}
	}
	out := make([]Box, len(v.boxes))
	for i, b := range v.boxes {
		out[i] = t.ApplyBox(b)
	}
	return Volume{boxes: out}
}

func (t Transform) Inverse() Transform {
	inv := t.R.Inverse()
	return Transform{R: inv, T: inv.Apply(t.T).Mul(-1)}
}

func (t Transform) IsIdentity() bool {
	return t.ApproxEqual(Identity, Epsilon)
}

func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return t.R.ApproxEqual(o.R, eps) && ApproxVec(t.T, o.T, eps)
}

func (t Transform) String() string {
	m := t.R.Matrix()
	return fmt.Sprintf("[%g %g %g | %g; %g %g %g | %g; %g %g %g | %g]",
		m.At(0, 0), m.At(0, 1), m.At(0, 2), t.T[0],
		m.At(1, 0), m.At(1, 1), m.At(1, 2), t.T[1],
		m.At(2, 0), m.At(2, 1), m.At(2, 2), t.T[2])
}
