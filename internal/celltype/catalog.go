package celltype

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
)

type CellDef struct {
	Name        string        `yaml:"name"`
	Orientation string        `yaml:"orientation"`
	Mesh        string        `yaml:"mesh"`
	Origin      []float64     `yaml:"origin,omitempty"`
	Textures    []string      `yaml:"textures,omitempty"`
	Properties  []PropertyDef `yaml:"properties,omitempty"`
	Variants    []VariantDef  `yaml:"variants,omitempty"`
	Debug       bool          `yaml:"debug,omitempty"`
}

type PropertyDef struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type VariantDef struct {
	When     map[string]string `yaml:"when"`
	Mesh     string            `yaml:"mesh"`
	Origin   []float64         `yaml:"origin,omitempty"`
	Textures []string          `yaml:"textures,omitempty"`
}

type catalogFile struct {
	Cells []CellDef `yaml:"cells"`
}

type Catalog struct {
	Digest string
	byName map[string]*Type
	names  []string
}

func LoadCatalog(path string, logger *log.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(raw, logger)
}

// ParseCatalog builds every cell type in raw. The first definition error
// fails the whole catalog.
func ParseCatalog(raw []byte, logger *log.Logger) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("cells.yaml: %w", err)
	}
	c := &Catalog{Digest: sha256Hex(raw), byName: map[string]*Type{}}
	for _, d := range f.Cells {
		t, err := build(d, logger)
		if err != nil {
			return nil, fmt.Errorf("cells.yaml: %w", err)
		}
		if _, dup := c.byName[t.Name()]; dup {
			return nil, fmt.Errorf("cells.yaml: duplicate cell %s", t.Name())
		}
		c.byName[t.Name()] = t
		c.names = append(c.names, t.Name())
	}
	sort.Strings(c.names)
	return c, nil
}

func build(d CellDef, logger *log.Logger) (*Type, error) {
	h, err := orient.ByKind(d.Orientation)
	if err != nil {
		return nil, fmt.Errorf("cell %s: %w", d.Name, err)
	}
	base, err := specOf(d.Mesh, d.Origin, d.Textures)
	if err != nil {
		return nil, fmt.Errorf("cell %s: %w", d.Name, err)
	}
	var opts []Option
	for _, p := range d.Properties {
		opts = append(opts, WithProperty(props.NewEnum(strings.TrimSpace(p.Name), p.Values...)))
	}
	for _, v := range d.Variants {
		textures := v.Textures
		if len(textures) == 0 {
			textures = d.Textures
		}
		s, err := specOf(v.Mesh, v.Origin, textures)
		if err != nil {
			return nil, fmt.Errorf("cell %s: variant: %w", d.Name, err)
		}
		opts = append(opts, WithVariant(v.When, s))
	}
	if d.Debug && logger != nil {
		opts = append(opts, WithDebug(logger))
	}
	return New(d.Name, h, base, opts...)
}

func specOf(meshName string, origin []float64, textures []string) (mesh.Spec, error) {
	s := mesh.Spec{MeshName: strings.TrimSpace(meshName), Textures: textures}
	switch len(origin) {
	case 0:
	case 3:
		s.LocalOrigin = geom.V(origin[0], origin[1], origin[2])
	default:
		return s, fmt.Errorf("origin needs 3 values, got %d", len(origin))
	}
	return s, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (c *Catalog) Get(name string) (*Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

func (c *Catalog) Names() []string { return append([]string(nil), c.names...) }

func (c *Catalog) Len() int { return len(c.names) }

// MeshNames lists the meshes of every type, sorted and deduplicated.
func (c *Catalog) MeshNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range c.names {
		for _, m := range c.byName[n].MeshNames() {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out
}
