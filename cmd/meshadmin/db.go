package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"voxelshapes.ai/internal/meshstore"
	"voxelshapes.ai/internal/persistence/meshdb"
)

func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	c := commonFlags(fs)
	dir := fs.String("dir", "", "mesh directory to import (default: <configs>/meshes)")
	_ = fs.Parse(args)

	root := strings.TrimSpace(*dir)
	if root == "" {
		root = filepath.Join(*c.configDir, "meshes")
	}
	db := c.openDB()
	defer db.Close()

	n, err := importDir(db, meshstore.NewDir(root), fs.Args())
	if err != nil {
		fatal("import:", err)
	}
	fmt.Printf("imported %d meshes into %s\n", n, c.db())
}

// importDir copies the named meshes, or every mesh when names is empty.
// Meshes are validated on the way in; the first invalid one stops the
// import.
func importDir(db *meshdb.DB, dir *meshstore.Dir, names []string) (int, error) {
	if len(names) == 0 {
		var err error
		if names, err = dir.Names(); err != nil {
			return 0, err
		}
	}
	for i, name := range names {
		raw, err := dir.Open(name)
		if err != nil {
			return i, err
		}
		if _, err := db.Put(name, raw); err != nil {
			return i, err
		}
	}
	return len(names), nil
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)

	db := c.openDB()
	defer db.Close()
	entries, err := db.List()
	if err != nil {
		fatal("list:", err)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tSTORED\tDIGEST\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", e.Name, e.Size, e.Stored, e.Digest[:12], e.UpdatedAt)
	}
	_ = tw.Flush()
}

func deleteCmd(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: meshadmin delete <name>...")
		os.Exit(2)
	}

	db := c.openDB()
	defer db.Close()
	for _, name := range fs.Args() {
		ok, err := db.Delete(name)
		if err != nil {
			fatal("delete:", err)
		}
		if !ok {
			fmt.Printf("%s: not found\n", name)
			continue
		}
		fmt.Printf("%s: deleted\n", name)
	}
}
