// Package mesh holds named cell meshes: the resource format, the voxelizer
// that derives collision boxes from a mesh, and the process-wide registry.
package mesh

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelshapes.ai/internal/geom"
)

var (
	ErrMeshNotFound = errors.New("mesh resource not found")
	ErrInvalidMesh  = errors.New("invalid mesh resource")
	ErrLoadAborted  = errors.New("mesh load aborted")
)

//go:embed mesh.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("mesh.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("mesh.schema.json")
	})
	return schema, schemaErr
}

// Face is one polygon. Vertices are in local cell space, normally inside
// the unit cell [0,1]³.
type Face struct {
	Vertices []geom.Vec3  `json:"vertices"`
	UVs      [][2]float64 `json:"uvs,omitempty"`
	Normal   geom.Vec3    `json:"normal"`
	// Tint selects the material pass: 0 is primary, anything else secondary.
	Tint int    `json:"tint"`
	Cull string `json:"cull,omitempty"`
}

// CullFace is the cell face that hides this polygon when covered, or None.
func (f Face) CullFace() geom.Direction {
	if f.Cull == "" {
		return geom.None
	}
	d, err := geom.ParseDirection(f.Cull)
	if err != nil {
		return geom.None
	}
	return d
}

// Mesh is an immutable polygon mesh. Boxes, when present, replace the
// voxelized collision volume.
type Mesh struct {
	Name  string       `json:"name"`
	Faces []Face       `json:"faces"`
	Boxes [][6]float64 `json:"boxes,omitempty"`
}

type Triangle [3]geom.Vec3

// Parse validates data against the mesh schema and decodes it.
func Parse(data []byte) (*Mesh, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("mesh schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	var m Mesh
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		if len(f.UVs) != 0 && len(f.UVs) != len(f.Vertices) {
			return nil, fmt.Errorf("%w: %s face %d has %d uvs for %d vertices", ErrInvalidMesh, m.Name, i, len(f.UVs), len(f.Vertices))
		}
		if f.Normal == (geom.Vec3{}) {
			f.Normal = faceNormal(f.Vertices)
		}
	}
	return &m, nil
}

func Encode(m *Mesh) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func faceNormal(vs []geom.Vec3) geom.Vec3 {
	for i := 2; i < len(vs); i++ {
		n := vs[1].Sub(vs[0]).Cross(vs[i].Sub(vs[0]))
		if n.Len() > geom.Epsilon {
			return n.Normalize()
		}
	}
	return geom.Vec3{}
}

// Triangles fans every face around its first vertex.
func (m *Mesh) Triangles() []Triangle {
	var out []Triangle
	for _, f := range m.Faces {
		for i := 2; i < len(f.Vertices); i++ {
			out = append(out, Triangle{f.Vertices[0], f.Vertices[i-1], f.Vertices[i]})
		}
	}
	return out
}

// Bounds of all vertices; false for a mesh without faces.
func (m *Mesh) Bounds() (geom.Box, bool) {
	var b geom.Box
	ok := false
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			pb := geom.Box{Min: v, Max: v}
			if !ok {
				b, ok = pb, true
				continue
			}
			b = b.Union(pb)
		}
	}
	return b, ok
}
