package service

import (
	"errors"

	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/protocol"
	"voxelshapes.ai/internal/render/baked"
)

func isMeshError(err error) bool {
	return errors.Is(err, mesh.ErrMeshNotFound) || errors.Is(err, mesh.ErrInvalidMesh)
}

// Boxes flattens a volume into min/max arrays.
func Boxes(v geom.Volume) [][6]float64 {
	out := make([][6]float64, v.Len())
	for i := range out {
		out[i] = v.Box(i).Array()
	}
	return out
}

func (r ShapeResult) ShapeMsg(id string) protocol.ShapeMsg {
	m := protocol.ShapeMsg{
		Type:            protocol.TypeShape,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Cell:            r.Cell.Name(),
		Config:          r.Config.String(),
		Props:           r.Config.Map(),
		Pos:             r.Pos.Array(),
		Boxes:           Boxes(r.Volume),
		Cached:          r.Cached,
		Fallback:        r.Fallback,
	}
	if r.Err != nil {
		m.Warning = r.Err.Error()
	}
	return m
}

func (r ShapeResult) PlacedMsg(id string) protocol.PlacedMsg {
	return protocol.PlacedMsg{
		Type:            protocol.TypePlaced,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Cell:            r.Cell.Name(),
		Config:          r.Config.String(),
		Props:           r.Config.Map(),
		Pos:             r.Pos.Array(),
		Boxes:           Boxes(r.Volume),
		Fallback:        r.Fallback,
	}
}

// BakedMsg renders the quads served for face; geom.None selects the
// unculled quads.
func (r BakeResult) BakedMsg(id string, face geom.Direction) protocol.BakedMsg {
	m := protocol.BakedMsg{
		Type:            protocol.TypeBaked,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Cell:            r.Cell.Name(),
		Config:          r.Config.String(),
		Layers:          []protocol.LayerOut{},
		AO:              r.Geometry.AmbientOcclusion(),
		Gui3D:           r.Geometry.Gui3D(),
	}
	for _, l := range []baked.Layer{baked.LayerPrimary, baked.LayerSecondary} {
		qs := r.Geometry.Quads(baked.Part{Face: face, Layer: l})
		if len(qs) == 0 {
			continue
		}
		out := protocol.LayerOut{Layer: l.String(), Quads: make([]protocol.QuadOut, len(qs))}
		for i, q := range qs {
			out.Quads[i] = quadOut(q)
		}
		m.Layers = append(m.Layers, out)
	}
	return m
}

func quadOut(q baked.Quad) protocol.QuadOut {
	o := protocol.QuadOut{
		UVs:     q.UVs,
		Normal:  [3]float64(q.Normal),
		Tint:    q.Tint,
		Texture: q.Texture,
		Cull:    q.Cull.String(),
	}
	for i, v := range q.Vertices {
		o.Vertices[i] = [3]float64(v)
	}
	return o
}
