package geom

import "strings"

// Volume is an immutable union of boxes. Whether it is in local or global
// space is fixed by the API that produced it.
type Volume struct {
	boxes []Box
}

// NewVolume copies boxes, dropping degenerate ones.
func NewVolume(boxes ...Box) Volume {
	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		b = Box{Min: minVec(b.Min, b.Max), Max: maxVec(b.Min, b.Max)}
		if b.Degenerate() {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return Volume{}
	}
	return Volume{boxes: out}
}

// FullCube is the unit cell volume in local space.
func FullCube() Volume { return Volume{boxes: []Box{UnitBox}} }

// FullCubeAt is the unit cell at a grid position.
func FullCubeAt(p Pos) Volume { return Volume{boxes: []Box{UnitBox.Offset(p.Vec())}} }

func (v Volume) IsEmpty() bool { return len(v.boxes) == 0 }

func (v Volume) Len() int { return len(v.boxes) }

func (v Volume) Box(i int) Box { return v.boxes[i] }

// Boxes returns a copy.
func (v Volume) Boxes() []Box {
	out := make([]Box, len(v.boxes))
	copy(out, v.boxes)
	return out
}

// Bounds is the box enclosing every constituent; ok is false when empty.
func (v Volume) Bounds() (Box, bool) {
	if len(v.boxes) == 0 {
		return Box{}, false
	}
	b := v.boxes[0]
	for _, o := range v.boxes[1:] {
		b = b.Union(o)
	}
	return b, true
}

func (v Volume) Offset(d Vec3) Volume { return Translation(d).ApplyVolume(v) }

func (v Volume) Union(o Volume) Volume {
	out := make([]Box, 0, len(v.boxes)+len(o.boxes))
	out = append(out, v.boxes...)
	out = append(out, o.boxes...)
	if len(out) == 0 {
		return Volume{}
	}
	return Volume{boxes: out}
}

func (v Volume) Contains(p Vec3) bool {
	for _, b := range v.boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// Equal compares boxes in order.
func (v Volume) Equal(o Volume) bool { return v.ApproxEqual(o, 0) }

func (v Volume) ApproxEqual(o Volume, eps float64) bool {
	if len(v.boxes) != len(o.boxes) {
		return false
	}
	for i := range v.boxes {
		if !v.boxes[i].ApproxEqual(o.boxes[i], eps) {
			return false
		}
	}
	return true
}

// Hit is the nearest intersection of a segment with a volume.
type Hit struct {
	Index int
	Point Vec3
	Face  Direction
	// T is the segment parameter in [0,1].
	T float64
}

// RayCast intersects the segment start→end with every box and returns the
// nearest hit. A start point inside a box hits it at T=0 with Face None.
func (v Volume) RayCast(start, end Vec3) (Hit, bool) {
	d := end.Sub(start)
	best := Hit{Index: -1}
	for i, b := range v.boxes {
		t, face, ok := b.clip(start, d, 0, 1)
		if !ok {
			continue
		}
		if best.Index < 0 || t < best.T {
			best = Hit{Index: i, Point: start.Add(d.Mul(t)), Face: face, T: t}
		}
	}
	return best, best.Index >= 0
}

func (v Volume) String() string {
	if len(v.boxes) == 0 {
		return "{}"
	}
	parts := make([]string, len(v.boxes))
	for i, b := range v.boxes {
		parts[i] = b.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
