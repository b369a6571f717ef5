package celltype

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
)

func TestNew_DefinitionErrorsAreFatal(t *testing.T) {
	_, err := New("busy", orient.FacingHalf{}, mesh.Spec{MeshName: "x"},
		WithProperty(props.NewEnum("a", "1", "2")),
		WithProperty(props.NewEnum("b", "1")),
		WithProperty(props.NewEnum("c", "1")),
	)
	if !errors.Is(err, props.ErrTooManyProperties) {
		t.Fatalf("expected ErrTooManyProperties, got %v", err)
	}

	_, err = New("wide", orient.Facing{}, mesh.Spec{MeshName: "x"},
		WithProperty(props.NewEnum("color", "red", "green", "blue", "white", "black")),
	)
	if !errors.Is(err, props.ErrCombinationLimitExceeded) {
		t.Fatalf("expected ErrCombinationLimitExceeded, got %v", err)
	}

	ct, err := New("ok", orient.FacingHalf{}, mesh.Spec{MeshName: "x"}, WithProperty(props.NewEnum("lit", "off", "on")))
	if err != nil {
		t.Fatalf("16 combinations must pass: %v", err)
	}
	if ct.Definition().Len() != 16 {
		t.Fatalf("len=%d", ct.Definition().Len())
	}
}

func TestVariants(t *testing.T) {
	base := mesh.Spec{MeshName: "tile", Textures: []string{"oak", "clay"}}
	mossy := mesh.Spec{MeshName: "tile", Textures: []string{"oak", "moss"}}
	ct, err := New("roof", orient.Facing{}, base,
		WithProperty(props.NewEnum("mossy", "no", "yes")),
		WithVariant(map[string]string{"mossy": "yes"}, mossy),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	plain, _ := ct.Configuration(map[string]string{"facing": "east"})
	moss, _ := ct.Configuration(map[string]string{"facing": "east", "mossy": "yes"})
	if got := ct.ModelSpec(plain).Texture(1); got != "clay" {
		t.Fatalf("plain texture=%q", got)
	}
	if got := ct.ModelSpec(moss).Texture(1); got != "moss" {
		t.Fatalf("mossy texture=%q", got)
	}

	if _, err := New("bad", orient.Fixed{}, base, WithVariant(map[string]string{"color": "red"}, mossy)); !errors.Is(err, props.ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	if _, err := New("bad", orient.Facing{}, base, WithVariant(map[string]string{"facing": "up"}, mossy)); err == nil {
		t.Fatalf("variant matching nothing must fail")
	}
}

func TestPlace(t *testing.T) {
	ct, err := New("slope", orient.Facing{}, mesh.Spec{MeshName: "slope"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cfg := ct.Place(orient.Placement{Facing: geom.Down, Hit: geom.V(-0.4, 0, 0.1)})
	if v, _ := cfg.Value(orient.SlotFacing); v != "west" {
		t.Fatalf("facing=%q", v)
	}
}

func TestLoadCatalog_RepoConfig(t *testing.T) {
	c, err := LoadCatalog("../../configs/cells.yaml", nil)
	if err != nil {
		t.Fatalf("load cells.yaml: %v", err)
	}
	if c.Len() != 5 || len(c.Digest) != 64 {
		t.Fatalf("len=%d digest=%q", c.Len(), c.Digest)
	}
	roof, ok := c.Get("roof_tile")
	if !ok {
		t.Fatalf("roof_tile missing")
	}
	if roof.Definition().Len() != 8 || roof.Orientation().Kind() != orient.KindFacing {
		t.Fatalf("roof_tile: configs=%d kind=%s", roof.Definition().Len(), roof.Orientation().Kind())
	}
	want := []string{"prim/box", "prim/pillar", "prim/slab", "roof/tile", "slope"}
	got := c.MeshNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("meshes=%v", got)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"orientation": "cells:\n  - name: a\n    orientation: spiral\n    mesh: m\n",
		"origin":      "cells:\n  - name: a\n    mesh: m\n    origin: [1, 2]\n",
		"duplicate":   "cells:\n  - name: a\n    mesh: m\n  - name: a\n    mesh: m\n",
		"too many":    "cells:\n  - name: a\n    orientation: facing\n    mesh: m\n    properties:\n      - {name: p, values: [a, b, c, d, e]}\n",
		"yaml":        "cells: [\n",
	}
	for name, doc := range cases {
		if _, err := ParseCatalog([]byte(doc), nil); err == nil || !strings.HasPrefix(err.Error(), "cells.yaml:") {
			t.Fatalf("%s: expected cells.yaml error, got %v", name, err)
		}
	}
}

func TestParseCatalog_DebugDump(t *testing.T) {
	var buf bytes.Buffer
	doc := "cells:\n  - name: lamp\n    mesh: m\n    debug: true\n    properties:\n      - {name: lit, values: [off, on]}\n"
	if _, err := ParseCatalog([]byte(doc), log.New(&buf, "", 0)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(buf.String(), "properties of lamp") {
		t.Fatalf("no dump:\n%s", buf.String())
	}
}
