package mesh

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// Source resolves a mesh name to its raw resource. A missing name must be
// reported with an error wrapping ErrMeshNotFound.
type Source interface {
	Open(name string) ([]byte, error)
}

type SourceFunc func(name string) ([]byte, error)

func (f SourceFunc) Open(name string) ([]byte, error) { return f(name) }

// Registry loads each mesh once and hands out the same *Model afterwards.
// Failed loads are not remembered, so a later Get retries.
type Registry struct {
	src    Source
	res    int
	logger *log.Logger

	mu      sync.Mutex
	models  map[string]*Model
	loading map[string]*pendingLoad

	loads atomic.Int64
}

type pendingLoad struct {
	done  chan struct{}
	model *Model
	err   error
}

type RegistryOption func(*Registry)

// WithResolution sets the voxel grid used for meshes without explicit boxes.
func WithResolution(res int) RegistryOption {
	return func(r *Registry) { r.res = res }
}

func WithLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(src Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		src:     src,
		res:     DefaultResolution,
		models:  map[string]*Model{},
		loading: map[string]*pendingLoad{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

func (r *Registry) Get(name string) (*Model, error) {
	r.mu.Lock()
	if m, ok := r.models[name]; ok {
		r.mu.Unlock()
		return m, nil
	}
	if p, ok := r.loading[name]; ok {
		r.mu.Unlock()
		<-p.done
		return p.model, p.err
	}
	// err stays set if load panics, so waiters are released with it.
	p := &pendingLoad{done: make(chan struct{}), err: fmt.Errorf("mesh %s: %w", name, ErrLoadAborted)}
	r.loading[name] = p
	r.mu.Unlock()
	defer r.finish(name, p)

	p.model, p.err = r.load(name)
	return p.model, p.err
}

func (r *Registry) finish(name string, p *pendingLoad) {
	r.mu.Lock()
	if p.err == nil {
		r.models[name] = p.model
	}
	delete(r.loading, name)
	r.mu.Unlock()
	close(p.done)
}

func (r *Registry) load(name string) (*Model, error) {
	r.loads.Add(1)
	if r.src == nil {
		return nil, fmt.Errorf("mesh %s: %w", name, ErrMeshNotFound)
	}
	data, err := r.src.Open(name)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", name, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", name, err)
	}
	if m.Name != name {
		r.logf("mesh %s: resource names itself %q", name, m.Name)
		m.Name = name
	}
	r.logf("mesh %s: loaded faces=%d boxes=%d", name, len(m.Faces), len(m.Boxes))
	return NewModel(m, r.res), nil
}

// Preload loads every name and voxelizes it, stopping at the first error.
func (r *Registry) Preload(names ...string) error {
	for _, n := range names {
		m, err := r.Get(n)
		if err != nil {
			return err
		}
		_ = m.CollisionVolume()
	}
	return nil
}

// Len is the number of loaded models.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.models)
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.models))
	for n := range r.models {
		out = append(out, n)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

// Loads counts load attempts, successful or not.
func (r *Registry) Loads() int64 { return r.loads.Load() }
