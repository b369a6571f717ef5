package geom

import (
	"math"
	"math/rand"
	"testing"
)

func randomTransform(r *rand.Rand, free bool) Transform {
	rot := QuarterTurnsY(r.Intn(4)).Mul(QuarterTurnsX(r.Intn(4))).Mul(QuarterTurnsZ(r.Intn(4)))
	if free {
		rot = AxisAngle(V(r.Float64()-0.5, r.Float64()-0.5, r.Float64()+0.1), r.Float64()*2*math.Pi)
	}
	tr := V(r.Float64()*20-10, r.Float64()*20-10, r.Float64()*20-10)
	return Transform{R: rot, T: tr}
}

func TestCompose_IsAssociative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		free := i%2 == 1
		a, b, c := randomTransform(r, free), randomTransform(r, false), randomTransform(r, free)
		left := a.Compose(b).Compose(c)
		right := a.Compose(b.Compose(c))
		if !left.ApproxEqual(right, 1e-9) {
			t.Fatalf("case %d: (AB)C=%v A(BC)=%v", i, left, right)
		}
	}
}

func TestCompose_AppliesRightOperandFirst(t *testing.T) {
	a := Translation(V(10, 0, 0))
	b := RotationOf(QuarterTurnsY(1))
	p := V(0, 0, -1)
	got := a.Compose(b).Apply(p)
	want := a.Apply(b.Apply(p))
	if !ApproxVec(got, want, 1e-12) {
		t.Fatalf("got %v want %v", got, want)
	}
	if !ApproxVec(got, V(11, 0, 0), 1e-12) {
		t.Fatalf("north should turn east then shift: got %v", got)
	}
}

func TestIdentity_LeavesInputsUnchanged(t *testing.T) {
	var zero Transform
	vol := NewVolume(NewBox(0, 0, 0, 1, 0.5, 1), NewBox(0.25, 0.5, 0.25, 0.75, 1, 0.75))
	for _, id := range []Transform{Identity, zero, Identity.Compose(Identity)} {
		if got := id.ApplyVolume(vol); !got.Equal(vol) {
			t.Fatalf("identity changed volume: %v -> %v", vol, got)
		}
		p := V(0.3, -2, 7.25)
		if got := id.Apply(p); got != p {
			t.Fatalf("identity changed point: %v -> %v", p, got)
		}
	}
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		x := randomTransform(r, i%2 == 0)
		if !Identity.Compose(x).ApproxEqual(x, 1e-12) || !x.Compose(Identity).ApproxEqual(x, 1e-12) {
			t.Fatalf("identity is not neutral for %v", x)
		}
	}
}

func TestApplyDir_IgnoresTranslation(t *testing.T) {
	tr := Translation(V(5, 6, 7)).Rotate(QuarterTurnsY(2))
	if got := tr.ApplyDir(North.Vec()); !ApproxVec(got, South.Vec(), 1e-12) {
		t.Fatalf("got %v", got)
	}
	if got := tr.ApplyFace(East); got != West {
		t.Fatalf("east turned twice should be west, got %v", got)
	}
}

func TestApplyBox_TranslatesUnitCell(t *testing.T) {
	got := Translation(V(2, 0, 5)).ApplyBox(UnitBox)
	want := NewBox(2, 0, 5, 3, 1, 6)
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAboutPoint_QuarterTurnsKeepCellInPlace(t *testing.T) {
	slab := NewBox(0, 0, 0, 1, 1, 0.5) // north half
	cases := []struct {
		turns int
		want  Box
	}{
		{0, NewBox(0, 0, 0, 1, 1, 0.5)},
		{1, NewBox(0.5, 0, 0, 1, 1, 1)},
		{2, NewBox(0, 0, 0.5, 1, 1, 1)},
		{3, NewBox(0, 0, 0, 0.5, 1, 1)},
	}
	for _, c := range cases {
		tr := AboutPoint(QuarterTurnsY(c.turns), CellCenter)
		if got := tr.ApplyBox(slab); !got.ApproxEqual(c.want, 1e-12) {
			t.Fatalf("turns=%d got %v want %v", c.turns, got, c.want)
		}
		if got := tr.ApplyBox(UnitBox); !got.ApproxEqual(UnitBox, 1e-12) {
			t.Fatalf("turns=%d moved the unit cell: %v", c.turns, got)
		}
	}
}

func TestApplyBox_FreeRotationEnclosesCorners(t *testing.T) {
	tr := RotationOf(AxisAngle(V(0, 1, 0), math.Pi/4))
	if tr.R.GridAligned() {
		t.Fatalf("45 degree rotation reported as grid aligned")
	}
	b := tr.ApplyBox(NewBox(-0.5, 0, -0.5, 0.5, 1, 0.5))
	h := math.Sqrt2 / 2
	want := NewBox(-h, 0, -h, h, 1, h)
	if !b.ApproxEqual(want, 1e-9) {
		t.Fatalf("got %v want %v", b, want)
	}
}

func TestFreeRotation_SnapsNearGrid(t *testing.T) {
	r := AxisAngle(V(0, 1, 0), -math.Pi/2)
	if !r.GridAligned() {
		t.Fatalf("quarter turn built from an angle should snap to grid")
	}
	if !r.ApproxEqual(QuarterTurnsY(1), 0) && !r.ApproxEqual(QuarterTurnsY(3), 0) {
		t.Fatalf("unexpected snapped matrix %v", r.Matrix())
	}
}

func TestInverse(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		x := randomTransform(r, i%3 == 0)
		if !x.Compose(x.Inverse()).IsIdentity() {
			t.Fatalf("x·x⁻¹ is not identity for %v", x)
		}
	}
}

func TestApplyVolume_DoesNotMutate(t *testing.T) {
	vol := NewVolume(UnitBox)
	before := vol.Boxes()
	_ = Translation(V(1, 2, 3)).Rotate(QuarterTurnsX(1)).ApplyVolume(vol)
	if !vol.Equal(NewVolume(before...)) {
		t.Fatalf("source volume changed: %v", vol)
	}
}
