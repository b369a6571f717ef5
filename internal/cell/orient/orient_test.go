package orient

import (
	"testing"

	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
)

func sealed(t *testing.T, h Handler) *props.Definition {
	t.Helper()
	d := props.NewDefinition("test")
	if err := h.DefineProperties(d); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := d.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	return d
}

func TestFixed(t *testing.T) {
	d := sealed(t, Fixed{})
	if len(d.Slots()) != 0 {
		t.Fatalf("fixed declared slots")
	}
	base := d.Default()
	if got := (Fixed{}).ResolvePlacement(Placement{Facing: geom.East, Hit: geom.V(0.4, 0, 0)}, base); got != base {
		t.Fatalf("fixed changed configuration")
	}
	tr := Fixed{}.TransformFor(base, geom.V(1, 2, 3))
	if !tr.ApproxEqual(geom.Translation(geom.V(1, 2, 3)), 0) {
		t.Fatalf("fixed transform=%v", tr)
	}
}

func TestFacing_NorthCenterPlacement(t *testing.T) {
	h := Facing{}
	d := sealed(t, h)
	if d.Len() != 4 {
		t.Fatalf("expected 4 configurations, got %d", d.Len())
	}
	cfg := h.ResolvePlacement(Placement{Facing: geom.North, Hit: geom.V(0, 0, 0)}, d.Default())
	if v, _ := cfg.Value(SlotFacing); v != "north" {
		t.Fatalf("facing=%q", v)
	}
	local := geom.NewVolume(geom.UnitBox)
	global := h.TransformFor(cfg, geom.V(2, 0, 5)).ApplyVolume(local)
	if global.Len() != 1 || !global.Box(0).ApproxEqual(geom.NewBox(2, 0, 5, 3, 1, 6), 1e-12) {
		t.Fatalf("global=%v", global)
	}
}

func TestFacing_ResolvePlacement(t *testing.T) {
	h := Facing{}
	d := sealed(t, h)
	cases := []struct {
		name string
		p    Placement
		want string
	}{
		{name: "horizontal wins", p: Placement{Facing: geom.West, Hit: geom.V(0.4, 0, 0)}, want: "west"},
		{name: "looking down east half", p: Placement{Facing: geom.Down, Hit: geom.V(0.3, -0.5, 0.1)}, want: "east"},
		{name: "looking up south half", p: Placement{Facing: geom.Up, Hit: geom.V(-0.1, 0.5, 0.2)}, want: "south"},
		{name: "looking down centre", p: Placement{Facing: geom.Down}, want: "north"},
	}
	for _, c := range cases {
		got := h.ResolvePlacement(c.p, d.Default())
		if v, _ := got.Value(SlotFacing); v != c.want {
			t.Fatalf("%s: facing=%q want %q", c.name, v, c.want)
		}
		again := h.ResolvePlacement(c.p, d.Default())
		if again != got {
			t.Fatalf("%s: placement not deterministic", c.name)
		}
	}
}

func TestFacing_TransformTurnsAboutCenter(t *testing.T) {
	h := Facing{}
	d := sealed(t, h)
	slab := geom.NewVolume(geom.NewBox(0, 0, 0, 1, 1, 0.5))
	cases := map[string]geom.Box{
		"north": geom.NewBox(0, 0, 0, 1, 1, 0.5),
		"east":  geom.NewBox(0.5, 0, 0, 1, 1, 1),
		"south": geom.NewBox(0, 0, 0.5, 1, 1, 1),
		"west":  geom.NewBox(0, 0, 0, 0.5, 1, 1),
	}
	for facing, want := range cases {
		cfg, err := d.Configuration(facing)
		if err != nil {
			t.Fatalf("%s: %v", facing, err)
		}
		tr := h.TransformFor(cfg, geom.Vec3{})
		if got := tr.ApplyVolume(slab).Box(0); !got.ApproxEqual(want, 1e-12) {
			t.Fatalf("%s: got %v want %v", facing, got, want)
		}
		if tr2 := h.TransformFor(cfg, geom.Vec3{}); !tr2.ApproxEqual(tr, 0) {
			t.Fatalf("%s: transform not pure", facing)
		}
	}
}

func TestFacingHalf(t *testing.T) {
	h := FacingHalf{}
	d := sealed(t, h)
	if d.Len() != 8 {
		t.Fatalf("expected 8 configurations, got %d", d.Len())
	}
	cases := []struct {
		p          Placement
		wantFacing string
		wantHalf   string
	}{
		{Placement{Facing: geom.North, Face: geom.Up}, "north", HalfBottom},
		{Placement{Facing: geom.East, Face: geom.Down}, "east", HalfTop},
		{Placement{Facing: geom.South, Face: geom.West, Hit: geom.V(0.5, 0.2, 0)}, "south", HalfTop},
		{Placement{Facing: geom.South, Face: geom.West, Hit: geom.V(0.5, -0.2, 0)}, "south", HalfBottom},
	}
	for _, c := range cases {
		cfg := h.ResolvePlacement(c.p, d.Default())
		f, _ := cfg.Value(SlotFacing)
		half, _ := cfg.Value(SlotHalf)
		if f != c.wantFacing || half != c.wantHalf {
			t.Fatalf("%+v: got %s/%s", c.p, f, half)
		}
	}

	bottomSlab := geom.NewVolume(geom.NewBox(0, 0, 0, 1, 0.5, 1))
	top, _ := d.Configuration("north", HalfTop)
	got := h.TransformFor(top, geom.Vec3{}).ApplyVolume(bottomSlab).Box(0)
	if !got.ApproxEqual(geom.NewBox(0, 0.5, 0, 1, 1, 1), 1e-12) {
		t.Fatalf("top half should flip slab upward, got %v", got)
	}
}

func TestByKind(t *testing.T) {
	for _, k := range []Kind{KindFixed, KindFacing, KindFacingHalf} {
		h, err := ByKind(string(k))
		if err != nil || h.Kind() != k {
			t.Fatalf("ByKind(%q)=%v,%v", k, h, err)
		}
	}
	if h, err := ByKind(""); err != nil || h.Kind() != KindFixed {
		t.Fatalf("empty kind should be fixed")
	}
	if _, err := ByKind("spiral"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNormalizeHit(t *testing.T) {
	// Clicking the top of the cell below at its centre.
	got := NormalizeHit(geom.Up, geom.V(0.5, 1, 0.5))
	if !geom.ApproxVec(got, geom.V(0, -0.5, 0), 1e-12) {
		t.Fatalf("got %v", got)
	}
	got = NormalizeHit(geom.East, geom.V(1, 0.75, 0.25))
	if !geom.ApproxVec(got, geom.V(-0.5, 0.25, -0.25), 1e-12) {
		t.Fatalf("got %v", got)
	}
}
