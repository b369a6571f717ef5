package baked

import (
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
)

type Layer uint8

const (
	LayerPrimary Layer = iota
	LayerSecondary
)

func (l Layer) String() string {
	if l == LayerSecondary {
		return "secondary"
	}
	return "primary"
}

// Part selects quads of one layer that cull against Face. Face None selects
// the quads that are always drawn.
type Part struct {
	Face  geom.Direction
	Layer Layer
}

// ForLayer matches Part keys of layer l and any key that is not a Part.
func ForLayer(l Layer) Predicate {
	return func(part any) bool {
		p, ok := part.(Part)
		return !ok || p.Layer == l
	}
}

// Faces is a fragment that dispatches on the cull face of the part.
type Faces struct {
	byFace [len(geom.Directions) + 1][]Quad
}

func (f *Faces) add(q Quad) {
	i := int(q.Cull)
	if !q.Cull.Valid() {
		i = int(geom.None)
	}
	f.byFace[i] = append(f.byFace[i], q)
}

func (f *Faces) Quads(part any) []Quad {
	face := geom.None
	switch p := part.(type) {
	case Part:
		face = p.Face
	case geom.Direction:
		face = p
	}
	if !face.Valid() {
		face = geom.None
	}
	return append([]Quad{}, f.byFace[face]...)
}

// All returns every quad, unculled ones first.
func (f *Faces) All() []Quad {
	var out []Quad
	for _, qs := range f.byFace {
		out = append(out, qs...)
	}
	return out
}

func (f *Faces) Len() int {
	n := 0
	for _, qs := range f.byFace {
		n += len(qs)
	}
	return n
}

// Target bakes mesh faces through a transform. Faces on tint 0 go to the
// primary layer, every other tint to the secondary layer.
type Target struct {
	t         geom.Transform
	spec      mesh.Spec
	primary   *Faces
	secondary *Faces
}

func NewTarget(t geom.Transform, spec mesh.Spec) *Target {
	return &Target{t: t, spec: spec, primary: &Faces{}, secondary: &Faces{}}
}

func (r *Target) AddMesh(m *mesh.Mesh) {
	for _, f := range m.Faces {
		r.AddFace(f)
	}
}

func (r *Target) AddFace(f mesh.Face) {
	n := len(f.Vertices)
	if n < 3 {
		return
	}
	if n == 3 || n == 4 {
		r.emit(f, [4]int{0, 1, 2, n - 1})
		return
	}
	for i := 2; i < n; i++ {
		r.emit(f, [4]int{0, i - 1, i, i})
	}
}

func (r *Target) emit(f mesh.Face, idx [4]int) {
	q := Quad{
		Normal:  r.t.ApplyDir(f.Normal),
		Tint:    f.Tint,
		Texture: r.spec.Texture(f.Tint),
		Cull:    r.t.ApplyFace(f.CullFace()),
	}
	for j, i := range idx {
		q.Vertices[j] = r.t.Apply(f.Vertices[i])
		if i < len(f.UVs) {
			q.UVs[j] = f.UVs[i]
		}
	}
	if f.Tint == 0 {
		r.primary.add(q)
	} else {
		r.secondary.add(q)
	}
}

func (r *Target) Primary() *Faces { return r.primary }

func (r *Target) Secondary() *Faces { return r.secondary }

// Geometry puts the non-empty layers into a Builder.
func (r *Target) Geometry() *Geometry {
	var b Builder
	if r.primary.Len() > 0 {
		_ = b.Put(ForLayer(LayerPrimary), r.primary)
	}
	if r.secondary.Len() > 0 {
		_ = b.Put(ForLayer(LayerSecondary), r.secondary)
	}
	return b.Build()
}
