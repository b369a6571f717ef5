// Package service answers shape, placement and bake queries against a cell
// catalog, a mesh registry and a shape cache.
package service

import (
	"errors"
	"fmt"
	"log"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/celltype"
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/protocol"
	"voxelshapes.ai/internal/render/baked"
	"voxelshapes.ai/internal/shapecache"
)

var ErrUnknownCell = errors.New("unknown cell type")

type Service struct {
	cells  *celltype.Catalog
	models shapecache.Models
	cache  *shapecache.Cache
	log    *log.Logger
}

func New(cells *celltype.Catalog, models shapecache.Models, cache *shapecache.Cache, logger *log.Logger) *Service {
	return &Service{cells: cells, models: models, cache: cache, log: logger}
}

func (s *Service) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Service) Catalog() *celltype.Catalog { return s.cells }

func (s *Service) Stats() shapecache.Stats { return s.cache.Stats() }

// ShapeResult is the collision volume of one cell in world space.
type ShapeResult struct {
	Cell   *celltype.Type
	Config *props.Configuration
	Pos    geom.Pos
	shapecache.Result
}

func (s *Service) cell(name string) (*celltype.Type, error) {
	t, ok := s.cells.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCell, name)
	}
	return t, nil
}

func (s *Service) resolve(name string, values map[string]string) (*celltype.Type, *props.Configuration, error) {
	t, err := s.cell(name)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := t.Configuration(values)
	if err != nil {
		return nil, nil, err
	}
	return t, cfg, nil
}

// Shape looks up the collision volume of cell in the configuration named by
// values. A load failure is reported in Result.Err alongside the full-cube
// fallback and is not an error of Shape itself.
func (s *Service) Shape(cell string, values map[string]string, pos geom.Pos) (ShapeResult, error) {
	t, cfg, err := s.resolve(cell, values)
	if err != nil {
		return ShapeResult{}, err
	}
	r := s.cache.Lookup(t, cfg, pos)
	if r.Err != nil {
		s.logf("service: shape %s %s at %v: %v", t.Name(), cfg, pos, r.Err)
	}
	return ShapeResult{Cell: t, Config: cfg, Pos: pos, Result: r}, nil
}

// Place resolves the configuration a cell placed at pos starts with and
// returns its collision volume.
func (s *Service) Place(cell string, pos geom.Pos, p orient.Placement) (ShapeResult, error) {
	t, err := s.cell(cell)
	if err != nil {
		return ShapeResult{}, err
	}
	cfg := t.Place(p)
	r := s.cache.Lookup(t, cfg, pos)
	return ShapeResult{Cell: t, Config: cfg, Pos: pos, Result: r}, nil
}

// BakeResult is the render geometry of one configuration in cell space.
type BakeResult struct {
	Cell     *celltype.Type
	Config   *props.Configuration
	Geometry *baked.Geometry
}

// Bake transforms the configuration's mesh into cell space and splits its
// faces into the primary and secondary layers.
func (s *Service) Bake(cell string, values map[string]string) (BakeResult, error) {
	t, cfg, err := s.resolve(cell, values)
	if err != nil {
		return BakeResult{}, err
	}
	spec := t.ModelSpec(cfg)
	if spec.IsZero() {
		return BakeResult{}, fmt.Errorf("%s: %w", t.Name(), celltype.ErrNoMesh)
	}
	model, err := s.models.Get(spec.MeshName)
	if err != nil {
		return BakeResult{}, err
	}
	target := baked.NewTarget(shapecache.Transform(t, cfg, geom.Pos{}, spec), spec)
	target.AddMesh(model.Mesh())
	return BakeResult{Cell: t, Config: cfg, Geometry: target.Geometry()}, nil
}

// Describe lists every cell type in catalog order.
func (s *Service) Describe() []protocol.CellRef {
	out := make([]protocol.CellRef, 0, s.cells.Len())
	for _, name := range s.cells.Names() {
		t, _ := s.cells.Get(name)
		def := t.Definition()
		ref := protocol.CellRef{
			Name:           t.Name(),
			Orientation:    string(t.Orientation().Kind()),
			Configurations: def.Len(),
			Slots:          []protocol.SlotRef{},
			Meshes:         t.MeshNames(),
		}
		for _, slot := range def.Slots() {
			ref.Slots = append(ref.Slots, protocol.SlotRef{Name: slot.Name(), Values: def.ValuesOf(slot)})
		}
		out = append(out, ref)
	}
	return out
}

// Invalidate drops cached shapes of the named cell type.
func (s *Service) Invalidate(cell string) (int, error) {
	t, err := s.cell(cell)
	if err != nil {
		return 0, err
	}
	return s.cache.Invalidate(t), nil
}

// ErrorCode maps a query error to a protocol error code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCell):
		return protocol.ErrUnknownCell
	case errors.Is(err, props.ErrUnknownSlot), errors.Is(err, props.ErrUnknownValue):
		return protocol.ErrUnknownProperty
	case errors.Is(err, celltype.ErrNoMesh):
		return protocol.ErrMeshUnavailable
	case isMeshError(err):
		return protocol.ErrMeshUnavailable
	default:
		return protocol.ErrInternal
	}
}
