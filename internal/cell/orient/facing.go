package orient

import (
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
)

const (
	SlotFacing = "facing"
	SlotHalf   = "half"

	HalfBottom = "bottom"
	HalfTop    = "top"
)

var (
	FacingSlot = props.NewEnum(SlotFacing,
		geom.North.String(), geom.East.String(), geom.South.String(), geom.West.String())
	HalfSlot = props.NewEnum(SlotHalf, HalfBottom, HalfTop)
)

// Facing turns the cell about the vertical axis through its centre. North is
// the unrotated model.
type Facing struct{}

func (Facing) Kind() Kind { return KindFacing }

func (Facing) DefineProperties(r props.Registrar) error {
	return r.DefineProperty(FacingSlot)
}

func (Facing) ResolvePlacement(p Placement, base *props.Configuration) *props.Configuration {
	return withValue(base, SlotFacing, placementFacing(p).String())
}

func (Facing) TransformFor(cfg *props.Configuration, origin geom.Vec3) geom.Transform {
	return geom.Translation(origin).Compose(geom.AboutPoint(facingRotation(cfg), geom.CellCenter))
}

// FacingHalf is Facing plus an upside-down variant, as used by stairs and
// roof tiles.
type FacingHalf struct{}

func (FacingHalf) Kind() Kind { return KindFacingHalf }

func (FacingHalf) DefineProperties(r props.Registrar) error {
	if err := r.DefineProperty(FacingSlot); err != nil {
		return err
	}
	return r.DefineProperty(HalfSlot)
}

func (FacingHalf) ResolvePlacement(p Placement, base *props.Configuration) *props.Configuration {
	cfg := withValue(base, SlotFacing, placementFacing(p).String())
	return withValue(cfg, SlotHalf, placementHalf(p))
}

func (FacingHalf) TransformFor(cfg *props.Configuration, origin geom.Vec3) geom.Transform {
	rot := facingRotation(cfg)
	if v, _ := value(cfg, SlotHalf); v == HalfTop {
		rot = rot.Mul(geom.QuarterTurnsX(2))
	}
	return geom.Translation(origin).Compose(geom.AboutPoint(rot, geom.CellCenter))
}

func placementFacing(p Placement) geom.Direction {
	if p.Facing.Horizontal() {
		return p.Facing
	}
	return geom.DominantHorizontal(p.Hit)
}

func placementHalf(p Placement) string {
	switch p.Face {
	case geom.Down:
		return HalfTop
	case geom.Up:
		return HalfBottom
	}
	if p.Hit[1] > 0 {
		return HalfTop
	}
	return HalfBottom
}

func facingRotation(cfg *props.Configuration) geom.Rotation {
	v, ok := value(cfg, SlotFacing)
	if !ok {
		return geom.IdentityRotation
	}
	d, err := geom.ParseDirection(v)
	if err != nil || !d.Horizontal() {
		return geom.IdentityRotation
	}
	return geom.QuarterTurnsY(d.QuarterTurns())
}

func value(cfg *props.Configuration, slot string) (string, bool) {
	if cfg == nil {
		return "", false
	}
	return cfg.Value(slot)
}

// withValue keeps base when the slot is missing; the handler's slots were
// not declared on that definition.
func withValue(base *props.Configuration, slot, v string) *props.Configuration {
	if base == nil {
		return nil
	}
	next, err := base.With(slot, v)
	if err != nil {
		return base
	}
	return next
}
