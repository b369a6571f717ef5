package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxelshapes.ai/internal/celltype"
	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/meshstore"
	"voxelshapes.ai/internal/persistence/meshdb"
	"voxelshapes.ai/internal/tuning"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "import":
		importCmd(args)
	case "list":
		listCmd(args)
	case "delete":
		deleteCmd(args)
	case "voxelize":
		voxelizeCmd(args)
	case "bake":
		bakeCmd(args)
	case "trace":
		traceCmd(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: meshadmin <import|list|delete|voxelize|bake|trace> [flags]")
}

// common holds the flags every subcommand shares.
type common struct {
	configDir *string
	dataDir   *string
	dbPath    *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		configDir: fs.String("configs", "./configs", "config directory"),
		dataDir:   fs.String("data", "./data", "runtime data directory"),
		dbPath:    fs.String("db", "", "mesh database (default: <data>/meshes.sqlite)"),
	}
}

func (c common) db() string {
	if p := strings.TrimSpace(*c.dbPath); p != "" {
		return p
	}
	return filepath.Join(*c.dataDir, "meshes.sqlite")
}

func (c common) openDB() *meshdb.DB {
	_ = os.MkdirAll(filepath.Dir(c.db()), 0o755)
	db, err := meshdb.OpenSQLite(c.db())
	if err != nil {
		fatal("open db:", err)
	}
	return db
}

func (c common) tuning() tuning.Tuning {
	t, err := tuning.Load(filepath.Join(*c.configDir, "tuning.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			fatal("load tuning:", err)
		}
		t = tuning.Defaults()
	}
	return t
}

// registry resolves meshes the same way the server does.
func (c common) registry(db *meshdb.DB) *mesh.Registry {
	t := c.tuning()
	src := meshstore.Chain{meshstore.NewDir(filepath.Join(*c.configDir, "meshes"))}
	if db != nil {
		src = append(src, db)
	}
	src = append(src, meshstore.NewPrimitives(t.PrimitiveCells))
	return mesh.NewRegistry(src, mesh.WithResolution(t.VoxelResolution))
}

func (c common) catalog() *celltype.Catalog {
	cat, err := celltype.LoadCatalog(filepath.Join(*c.configDir, "cells.yaml"), nil)
	if err != nil {
		fatal("load cells:", err)
	}
	return cat
}

func fatal(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix, err)
	os.Exit(1)
}
