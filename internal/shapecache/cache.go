// Package shapecache memoizes the global collision volume of placed cells.
//
// Each (cell type, configuration, position) key is derived at most once at a
// time: concurrent callers of a missing key wait for the one derivation in
// flight and see its result. Empty results are never stored; the caller gets
// the full unit cube at the position instead, and the key is retried after a
// short per-key backoff.
package shapecache

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/mesh"
)

// ErrDeriveAborted is reported to callers waiting on a derivation that
// panicked.
var ErrDeriveAborted = errors.New("shape derivation aborted")

// Cell is the cache's view of a cell type. Implementations must be
// comparable, normally a pointer.
type Cell interface {
	Name() string
	ModelSpec(cfg *props.Configuration) mesh.Spec
	Orientation() orient.Handler
}

// Models resolves mesh names; *mesh.Registry implements it.
type Models interface {
	Get(name string) (*mesh.Model, error)
}

type Key struct {
	Cell   Cell
	Config *props.Configuration
	Pos    geom.Pos
}

type Options struct {
	// EmptyBackoff is how long a key that derived to an empty volume keeps
	// answering with the full cube before it is derived again. Zero means
	// the next lookup derives again.
	EmptyBackoff time.Duration
	// MaxEmptyBackoff caps the doubling of EmptyBackoff for keys that stay
	// empty.
	MaxEmptyBackoff time.Duration

	Observer Observer
	Logger   *log.Logger
	Now      func() time.Time
}

type Cache struct {
	models Models
	opts   Options

	mu      sync.Mutex
	entries map[Key]*entry
	empty   map[Key]*backoff

	hits        atomic.Int64
	misses      atomic.Int64
	derivations atomic.Int64
	fallbacks   atomic.Int64
	loadErrors  atomic.Int64
}

// entry is a promise: done is closed once vol/err/ok are final.
type entry struct {
	done chan struct{}
	vol  geom.Volume
	err  error
	ok   bool
}

type backoff struct {
	until time.Time
	next  time.Duration
}

func New(models Models, opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxEmptyBackoff < opts.EmptyBackoff {
		opts.MaxEmptyBackoff = opts.EmptyBackoff
	}
	return &Cache{
		models:  models,
		opts:    opts,
		entries: map[Key]*entry{},
		empty:   map[Key]*backoff{},
	}
}

func (c *Cache) logf(format string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Printf(format, args...)
	}
}

// Result is the outcome of one lookup.
type Result struct {
	Volume geom.Volume
	// Cached is set when the volume came from a stored entry.
	Cached bool
	// Fallback is set when Volume is the full-cube default.
	Fallback bool
	// Err is the load error behind a fallback, if any.
	Err error
}

// Shape returns the global collision volume of cell at pos. On a load error
// the full cube is returned together with the error.
func (c *Cache) Shape(cell Cell, cfg *props.Configuration, pos geom.Pos) (geom.Volume, error) {
	r := c.Lookup(cell, cfg, pos)
	return r.Volume, r.Err
}

func (c *Cache) Lookup(cell Cell, cfg *props.Configuration, pos geom.Pos) Result {
	k := Key{Cell: cell, Config: cfg, Pos: pos}

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		c.mu.Unlock()
		<-e.done
		if e.ok {
			c.hits.Add(1)
			return Result{Volume: e.vol, Cached: true}
		}
		c.fallbacks.Add(1)
		return Result{Volume: geom.FullCubeAt(pos), Fallback: true, Err: e.err}
	}
	if b, ok := c.empty[k]; ok && c.opts.Now().Before(b.until) {
		c.mu.Unlock()
		c.fallbacks.Add(1)
		return Result{Volume: geom.FullCubeAt(pos), Fallback: true}
	}
	e := &entry{done: make(chan struct{})}
	c.entries[k] = e
	c.mu.Unlock()

	c.misses.Add(1)
	c.fill(k, e)

	if e.ok {
		return Result{Volume: e.vol}
	}
	c.fallbacks.Add(1)
	return Result{Volume: geom.FullCubeAt(pos), Fallback: true, Err: e.err}
}

func (c *Cache) fill(k Key, e *entry) {
	start := c.opts.Now()
	settled := false
	defer func() {
		if !settled {
			c.settle(k, e, geom.Volume{}, fmt.Errorf("%s %s at %v: %w", k.Cell.Name(), configString(k.Config), k.Pos, ErrDeriveAborted))
		}
	}()
	spec, vol, err := c.derive(k)
	c.derivations.Add(1)
	took := c.opts.Now().Sub(start)
	c.settle(k, e, vol, err)
	settled = true

	if err != nil {
		c.logf("shapecache: %s %s at %v: %v", k.Cell.Name(), configString(k.Config), k.Pos, err)
	} else if vol.IsEmpty() {
		c.logf("shapecache: %s %s at %v derived empty, using full cube", k.Cell.Name(), configString(k.Config), k.Pos)
	}
	if c.opts.Observer != nil {
		c.opts.Observer.Derived(Derivation{
			At:       start,
			Cell:     k.Cell.Name(),
			Config:   configString(k.Config),
			Pos:      k.Pos.Array(),
			Mesh:     spec.MeshName,
			Boxes:    vol.Len(),
			Empty:    err == nil && vol.IsEmpty(),
			Err:      errString(err),
			Duration: took,
		})
	}
}

// settle publishes the outcome of a derivation and releases its waiters.
func (c *Cache) settle(k Key, e *entry, vol geom.Volume, err error) {
	c.mu.Lock()
	current := c.entries[k] == e
	switch {
	case err != nil:
		c.loadErrors.Add(1)
		e.err = err
		if current {
			delete(c.entries, k)
		}
	case vol.IsEmpty():
		if current {
			delete(c.entries, k)
		}
		c.backOffLocked(k)
	default:
		e.vol = vol
		e.ok = true
		delete(c.empty, k)
	}
	c.mu.Unlock()
	close(e.done)
}

func (c *Cache) backOffLocked(k Key) {
	if c.opts.EmptyBackoff <= 0 {
		return
	}
	b, ok := c.empty[k]
	if !ok {
		b = &backoff{next: c.opts.EmptyBackoff}
		c.empty[k] = b
	}
	b.until = c.opts.Now().Add(b.next)
	b.next *= 2
	if b.next > c.opts.MaxEmptyBackoff {
		b.next = c.opts.MaxEmptyBackoff
	}
}

func (c *Cache) derive(k Key) (mesh.Spec, geom.Volume, error) {
	spec := k.Cell.ModelSpec(k.Config)
	if spec.IsZero() {
		return spec, geom.Volume{}, nil
	}
	model, err := c.models.Get(spec.MeshName)
	if err != nil {
		return spec, geom.Volume{}, err
	}
	return spec, model.Shape(Transform(k.Cell, k.Config, k.Pos, spec)), nil
}

// Transform is the local→global transform used for a cell at pos.
func Transform(cell Cell, cfg *props.Configuration, pos geom.Pos, spec mesh.Spec) geom.Transform {
	h := cell.Orientation()
	if h == nil {
		h = orient.Fixed{}
	}
	return geom.Translation(pos.Vec()).Compose(h.TransformFor(cfg, spec.LocalOrigin))
}

// Invalidate drops every entry of cell, including backoff state.
func (c *Cache) Invalidate(cell Cell) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if k.Cell == cell {
			delete(c.entries, k)
			n++
		}
	}
	for k := range c.empty {
		if k.Cell == cell {
			delete(c.empty, k)
		}
	}
	return n
}

func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[Key]*entry{}
	c.empty = map[Key]*backoff{}
	c.mu.Unlock()
}

// Len counts stored and in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Derivations int64 `json:"derivations"`
	Fallbacks   int64 `json:"fallbacks"`
	LoadErrors  int64 `json:"load_errors"`
	Entries     int   `json:"entries"`
	BackingOff  int   `json:"backing_off"`
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries, backingOff := len(c.entries), len(c.empty)
	c.mu.Unlock()
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Derivations: c.derivations.Load(),
		Fallbacks:   c.fallbacks.Load(),
		LoadErrors:  c.loadErrors.Load(),
		Entries:     entries,
		BackingOff:  backingOff,
	}
}

func configString(cfg *props.Configuration) string {
	if cfg == nil {
		return ""
	}
	return cfg.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
