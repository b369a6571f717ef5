package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/service"
	"voxelshapes.ai/internal/shapecache"
)

// voxelizeCmd prints the local collision boxes of each named mesh.
func voxelizeCmd(args []string) {
	fs := flag.NewFlagSet("voxelize", flag.ExitOnError)
	c := commonFlags(fs)
	useDB := fs.Bool("use_db", true, "also resolve meshes from the database")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: meshadmin voxelize <mesh>...")
		os.Exit(2)
	}

	reg := c.registry(nil)
	if *useDB {
		db := c.openDB()
		defer db.Close()
		reg = c.registry(db)
	}
	for _, name := range fs.Args() {
		m, err := reg.Get(name)
		if err != nil {
			fatal("voxelize:", err)
		}
		printVolume(name, m)
	}
}

func printVolume(name string, m *mesh.Model) {
	vol := m.CollisionVolume()
	b, ok := vol.Bounds()
	if !ok {
		fmt.Printf("%s: empty (full cube when placed)\n", name)
		return
	}
	fmt.Printf("%s: %d boxes, bounds %v\n", name, vol.Len(), b)
	for _, box := range vol.Boxes() {
		fmt.Printf("  %v\n", box)
	}
}

// bakeCmd prints the baked quads of a cell configuration as BAKED JSON.
func bakeCmd(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	c := commonFlags(fs)
	propList := fs.String("props", "", "slot=value pairs, comma separated")
	face := fs.String("face", "", "cull face filter (empty: unculled quads)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: meshadmin bake [-props facing=east] <cell>")
		os.Exit(2)
	}
	values, err := parseProps(*propList)
	if err != nil {
		fatal("bad -props:", err)
	}
	var dir geom.Direction
	if err := dir.UnmarshalText([]byte(*face)); err != nil {
		fatal("bad -face:", err)
	}

	db := c.openDB()
	defer db.Close()
	reg := c.registry(db)
	svc := service.New(c.catalog(), reg, shapecache.New(reg, shapecache.Options{}), nil)
	r, err := svc.Bake(fs.Arg(0), values)
	if err != nil {
		fatal("bake:", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(r.BakedMsg("", dir))
}

func parseProps(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected slot=value, got %q", kv)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
