package log

import (
	stdlog "log"
	"path/filepath"
	"sync/atomic"

	"voxelshapes.ai/internal/shapecache"
)

// TraceLogger records every shape derivation. It implements
// shapecache.Observer; write errors are counted and logged, never returned
// to the cache.
type TraceLogger struct {
	w      *JSONLZstdWriter
	logger *stdlog.Logger
	errs   atomic.Int64
	lines  atomic.Int64
}

func NewTraceLogger(dataDir string, logger *stdlog.Logger) *TraceLogger {
	return &TraceLogger{
		w:      NewJSONLZstdWriter(filepath.Join(dataDir, "trace"), "derive"),
		logger: logger,
	}
}

func (l *TraceLogger) Derived(d shapecache.Derivation) {
	if err := l.w.Write(d); err != nil {
		if l.errs.Add(1) == 1 && l.logger != nil {
			l.logger.Printf("trace log: %v", err)
		}
		return
	}
	l.lines.Add(1)
}

func (l *TraceLogger) Lines() int64  { return l.lines.Load() }
func (l *TraceLogger) Errors() int64 { return l.errs.Load() }
func (l *TraceLogger) Close() error  { return l.w.Close() }
