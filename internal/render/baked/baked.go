// Package baked assembles renderable cell geometry from up to two
// separately produced fragments, such as a primary and a secondary material
// pass.
package baked

import (
	"errors"

	"voxelshapes.ai/internal/geom"
)

const MaxFragments = 2

var ErrTooManyFragments = errors.New("too many fragments")

// Quad is four vertices in cell space. Triangles repeat their last vertex.
type Quad struct {
	Vertices [4]geom.Vec3   `json:"vertices"`
	UVs      [4][2]float64  `json:"uvs"`
	Normal   geom.Vec3      `json:"normal"`
	Tint     int            `json:"tint"`
	Texture  string         `json:"texture,omitempty"`
	Cull     geom.Direction `json:"cull"`
}

// Fragment answers quad queries for an opaque part key.
type Fragment interface {
	Quads(part any) []Quad
}

// QuadList is a fragment that answers every query with all of its quads.
type QuadList []Quad

func (l QuadList) Quads(any) []Quad { return append([]Quad{}, l...) }

// Predicate decides whether a fragment serves a part.
type Predicate func(part any) bool

func Always(any) bool { return true }

type slot struct {
	pred Predicate
	frag Fragment
}

type Builder struct {
	slots []slot
}

// Put adds a fragment. Nil fragments are skipped; a nil predicate always
// matches.
func (b *Builder) Put(pred Predicate, f Fragment) error {
	if f == nil {
		return nil
	}
	if len(b.slots) >= MaxFragments {
		return ErrTooManyFragments
	}
	if pred == nil {
		pred = Always
	}
	b.slots = append(b.slots, slot{pred: pred, frag: f})
	return nil
}

func (b *Builder) Build() *Geometry {
	return &Geometry{slots: append([]slot(nil), b.slots...)}
}

// Geometry is the built composite. The zero value answers every query with
// no quads.
type Geometry struct {
	slots []slot
}

// Quads returns a copy of the quads of the first fragment whose predicate
// matches part, or an empty non-nil slice.
func (g *Geometry) Quads(part any) []Quad {
	if g != nil {
		for _, s := range g.slots {
			if s.pred(part) {
				return append([]Quad{}, s.frag.Quads(part)...)
			}
		}
	}
	return []Quad{}
}

func (g *Geometry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.slots)
}

func (g *Geometry) AmbientOcclusion() bool { return true }

func (g *Geometry) Gui3D() bool { return true }
