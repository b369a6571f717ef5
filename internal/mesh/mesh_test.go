package mesh

import (
	"errors"
	"testing"

	"voxelshapes.ai/internal/geom"
)

func TestParse_RoundTripCuboid(t *testing.T) {
	data, err := Encode(Cuboid("slab", geom.NewBox(0, 0, 0, 1, 0.5, 1), 0))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "slab" || len(m.Faces) != 6 || len(m.Triangles()) != 12 {
		t.Fatalf("unexpected mesh: name=%q faces=%d", m.Name, len(m.Faces))
	}
	if got := m.Faces[0].CullFace(); got != geom.Down {
		t.Fatalf("bottom face cull=%v", got)
	}
	if got := m.Faces[1].CullFace(); got != geom.None {
		t.Fatalf("inner top face must not cull, got %v", got)
	}
	b, ok := m.Bounds()
	if !ok || b != geom.NewBox(0, 0, 0, 1, 0.5, 1) {
		t.Fatalf("bounds=%v", b)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"missing name":   `{"faces":[]}`,
		"two vertices":   `{"name":"x","faces":[{"vertices":[[0,0,0],[1,0,0]]}]}`,
		"bad cull":       `{"name":"x","faces":[{"vertices":[[0,0,0],[1,0,0],[1,1,0]],"cull":"sideways"}]}`,
		"short box":      `{"name":"x","faces":[],"boxes":[[0,0,0,1,1]]}`,
		"uv count":       `{"name":"x","faces":[{"vertices":[[0,0,0],[1,0,0],[1,1,0]],"uvs":[[0,0]]}]}`,
		"negative tint":  `{"name":"x","faces":[{"vertices":[[0,0,0],[1,0,0],[1,1,0]],"tint":-1}]}`,
		"unknown fields": `{"name":"x","faces":[],"color":"red"}`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidMesh) {
			t.Fatalf("%s: expected ErrInvalidMesh, got %v", name, err)
		}
	}
}

func TestParse_DerivesMissingNormal(t *testing.T) {
	m, err := Parse([]byte(`{"name":"tri","faces":[{"vertices":[[0,0,0],[1,0,0],[0,0,1]]}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !geom.ApproxVec(m.Faces[0].Normal, geom.V(0, -1, 0), 1e-12) {
		t.Fatalf("normal=%v", m.Faces[0].Normal)
	}
}

func TestVoxelize(t *testing.T) {
	cases := []struct {
		name string
		box  geom.Box
		res  int
	}{
		{name: "cube", box: geom.UnitBox, res: 4},
		{name: "slab", box: geom.NewBox(0, 0, 0, 1, 0.5, 1), res: 4},
		{name: "post", box: geom.NewBox(0.25, 0, 0.25, 0.75, 1, 0.75), res: 8},
	}
	for _, c := range cases {
		v := Voxelize(Cuboid(c.name, c.box, 0), c.res)
		if v.Len() != 1 {
			t.Fatalf("%s: expected one merged box, got %v", c.name, v)
		}
		if !v.Box(0).ApproxEqual(c.box, 1e-12) {
			t.Fatalf("%s: got %v want %v", c.name, v.Box(0), c.box)
		}
	}
}

func TestVoxelize_TwoSeparateParts(t *testing.T) {
	a := Cuboid("a", geom.NewBox(0, 0, 0, 1, 0.25, 1), 0)
	b := Cuboid("b", geom.NewBox(0, 0.75, 0, 1, 1, 1), 0)
	a.Faces = append(a.Faces, b.Faces...)
	v := Voxelize(a, 4)
	if v.Len() != 2 {
		t.Fatalf("expected 2 boxes, got %v", v)
	}
	if v.Contains(geom.V(0.5, 0.5, 0.5)) {
		t.Fatalf("gap between parts should be empty")
	}
}

func TestVoxelize_EmptyMesh(t *testing.T) {
	if v := Voxelize(&Mesh{Name: "none"}, 4); !v.IsEmpty() {
		t.Fatalf("expected empty volume, got %v", v)
	}
}

func TestModel_ExplicitBoxesOverride(t *testing.T) {
	m := Cuboid("cube", geom.UnitBox, 0)
	m.Boxes = [][6]float64{{0, 0, 0, 1, 0.5, 1}}
	model := NewModel(m, 4)
	v := model.CollisionVolume()
	if v.Len() != 1 || v.Box(0) != geom.NewBox(0, 0, 0, 1, 0.5, 1) {
		t.Fatalf("explicit boxes ignored: %v", v)
	}
	shifted := model.Shape(geom.Translation(geom.V(2, 0, 5)))
	if shifted.Box(0) != geom.NewBox(2, 0, 5, 3, 0.5, 6) {
		t.Fatalf("shape=%v", shifted)
	}
	if !model.CollisionVolume().Equal(v) {
		t.Fatalf("collision volume changed after Shape")
	}
}
