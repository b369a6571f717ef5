package main

import (
	"fmt"
	"io"

	persistlog "voxelshapes.ai/internal/persistence/log"
	"voxelshapes.ai/internal/shapecache"
)

type metricsSnapshot struct {
	Cache       shapecache.Stats
	Meshes      int
	MeshLoads   int64
	Connections int64
	Trace       *persistlog.TraceLogger
}

// writeMetrics renders the minimal Prometheus exposition format.
func writeMetrics(w io.Writer, m metricsSnapshot) {
	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n", name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s %d\n", name, v)
	}

	counter("voxelshapes_shape_hits_total", "Shape lookups answered from a stored entry.", m.Cache.Hits)
	counter("voxelshapes_shape_misses_total", "Shape lookups that started a derivation.", m.Cache.Misses)
	counter("voxelshapes_shape_derivations_total", "Completed shape derivations.", m.Cache.Derivations)
	counter("voxelshapes_shape_fallbacks_total", "Lookups answered with the full cube.", m.Cache.Fallbacks)
	counter("voxelshapes_shape_load_errors_total", "Derivations that failed to load a mesh.", m.Cache.LoadErrors)
	gauge("voxelshapes_shape_entries", "Stored and in-flight cache entries.", int64(m.Cache.Entries))
	gauge("voxelshapes_shape_backing_off", "Keys waiting out an empty-result backoff.", int64(m.Cache.BackingOff))
	gauge("voxelshapes_meshes_loaded", "Meshes held by the registry.", int64(m.Meshes))
	counter("voxelshapes_mesh_loads_total", "Mesh load attempts.", m.MeshLoads)
	gauge("voxelshapes_ws_connections", "Connected query clients.", m.Connections)
	if m.Trace != nil {
		counter("voxelshapes_trace_lines_total", "Derivation trace lines written.", m.Trace.Lines())
		counter("voxelshapes_trace_errors_total", "Derivation trace write errors.", m.Trace.Errors())
	}
}
