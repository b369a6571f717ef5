// Package meshstore provides the mesh resource sources: a directory of JSON
// files, the built-in procedural primitives and a chain over several
// sources.
package meshstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"voxelshapes.ai/internal/mesh"
)

const (
	extJSON = ".json"
	extZstd = ".json.zst"
)

var ErrBadName = errors.New("bad mesh name")

// Dir reads <root>/<name>.json, falling back to <root>/<name>.json.zst.
type Dir struct {
	root string
}

func NewDir(root string) *Dir { return &Dir{root: root} }

func (d *Dir) Root() string { return d.root }

// CleanName rejects names that would escape the store root.
func CleanName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.HasPrefix(n, "/") || strings.Contains(n, "\\") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	c := path.Clean(n)
	if c != n || c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return c, nil
}

// Open reports a name the directory cannot hold as ErrBadName and
// mesh.ErrMeshNotFound, so a Chain moves on to the next source.
func (d *Dir) Open(name string) ([]byte, error) {
	n, err := CleanName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, mesh.ErrMeshNotFound)
	}
	base := filepath.Join(d.root, filepath.FromSlash(n))
	b, err := os.ReadFile(base + extJSON)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	b, err = readZstd(base + extZstd)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", n, mesh.ErrMeshNotFound)
	}
	return b, err
}

func readZstd(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(bufio.NewReader(dec))
}

// Write stores data as <name>.json, or <name>.json.zst when compress is set.
func (d *Dir) Write(name string, data []byte, compress bool) error {
	n, err := CleanName(name)
	if err != nil {
		return err
	}
	base := filepath.Join(d.root, filepath.FromSlash(n))
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return err
	}
	if !compress {
		return os.WriteFile(base+extJSON, data, 0o644)
	}
	f, err := os.OpenFile(base+extZstd, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Names lists every mesh under the root, sorted. A name present in both
// forms is listed once.
func (d *Dir) Names() ([]string, error) {
	seen := map[string]struct{}{}
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case strings.HasSuffix(rel, extZstd):
			seen[strings.TrimSuffix(rel, extZstd)] = struct{}{}
		case strings.HasSuffix(rel, extJSON):
			seen[strings.TrimSuffix(rel, extJSON)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
