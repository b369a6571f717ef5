// Package orient maps placement input to a cell configuration and a
// configuration to the cell's local→global transform.
package orient

import (
	"fmt"
	"strings"

	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
)

type Kind string

const (
	KindFixed      Kind = "fixed"
	KindFacing     Kind = "facing"
	KindFacingHalf Kind = "facing_half"
)

// Placement is what the placer supplied when the cell was put down.
type Placement struct {
	// Facing is the direction the placer is looking.
	Facing geom.Direction
	// Face is the face that was clicked; None when unknown.
	Face geom.Direction
	// Hit is the click offset on the placement plane, each axis in
	// [-0.5, 0.5]. See NormalizeHit.
	Hit    geom.Vec3
	Placer string
}

// Handler is one orientation variant. Implementations are stateless; both
// ResolvePlacement and TransformFor are pure.
type Handler interface {
	Kind() Kind
	DefineProperties(r props.Registrar) error
	ResolvePlacement(p Placement, base *props.Configuration) *props.Configuration
	TransformFor(cfg *props.Configuration, origin geom.Vec3) geom.Transform
}

// NormalizeHit turns a click location relative to the clicked cell's corner
// into an offset from the centre of the cell being placed against face.
func NormalizeHit(face geom.Direction, raw geom.Vec3) geom.Vec3 {
	d := face.Vec()
	return geom.V(raw[0]-d[0]-0.5, raw[1]-d[1]-0.5, raw[2]-d[2]-0.5)
}

func ByKind(kind string) (Handler, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", KindFixed:
		return Fixed{}, nil
	case KindFacing:
		return Facing{}, nil
	case KindFacingHalf:
		return FacingHalf{}, nil
	default:
		return nil, fmt.Errorf("unknown orientation %q", kind)
	}
}

// Fixed never rotates.
type Fixed struct{}

func (Fixed) Kind() Kind { return KindFixed }

func (Fixed) DefineProperties(props.Registrar) error { return nil }

func (Fixed) ResolvePlacement(_ Placement, base *props.Configuration) *props.Configuration {
	return base
}

func (Fixed) TransformFor(_ *props.Configuration, origin geom.Vec3) geom.Transform {
	return geom.Translation(origin)
}
