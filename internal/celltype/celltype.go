// Package celltype defines placeable cell types: their property slots,
// orientation handler and model specs.
package celltype

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/cell/props"
	"voxelshapes.ai/internal/mesh"
)

var ErrNoMesh = errors.New("cell type has no mesh")

// Type is immutable once New returns.
type Type struct {
	name     string
	handler  orient.Handler
	def      *props.Definition
	spec     mesh.Spec
	variants map[*props.Configuration]mesh.Spec
}

type variant struct {
	when map[string]string
	spec mesh.Spec
}

type settings struct {
	slots    []props.Slot
	variants []variant
	debug    *log.Logger
}

type Option func(*settings)

// WithProperty declares a slot after the orientation handler's slots.
func WithProperty(s props.Slot) Option {
	return func(o *settings) { o.slots = append(o.slots, s) }
}

// WithVariant uses spec for every configuration whose values match when.
// The first matching variant wins.
func WithVariant(when map[string]string, spec mesh.Spec) Option {
	return func(o *settings) { o.variants = append(o.variants, variant{when: when, spec: spec}) }
}

// WithDebug traces slot definition and dumps the value tables to l.
func WithDebug(l *log.Logger) Option {
	return func(o *settings) { o.debug = l }
}

// New defines and seals a cell type. Any error is a definition error and
// the type must not be used.
func New(name string, h orient.Handler, spec mesh.Spec, opts ...Option) (*Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("cell type: empty name")
	}
	if h == nil {
		h = orient.Fixed{}
	}
	var o settings
	for _, opt := range opts {
		opt(&o)
	}

	def := props.NewDefinition(name)
	def.SetDebug(o.debug)
	if err := h.DefineProperties(def); err != nil {
		return nil, fmt.Errorf("cell type %s: %w", name, err)
	}
	for _, s := range o.slots {
		if err := def.DefineProperty(s); err != nil {
			return nil, fmt.Errorf("cell type %s: %w", name, err)
		}
	}
	if err := def.Seal(); err != nil {
		return nil, fmt.Errorf("cell type %s: %w", name, err)
	}

	t := &Type{name: name, handler: h, def: def, spec: spec, variants: map[*props.Configuration]mesh.Spec{}}
	for i, v := range o.variants {
		for slot := range v.when {
			if _, ok := def.Default().Value(slot); !ok {
				return nil, fmt.Errorf("cell type %s: variant %d: %w: %s", name, i, props.ErrUnknownSlot, slot)
			}
		}
		matched := 0
		for _, cfg := range def.All() {
			if !matches(cfg, v.when) {
				continue
			}
			matched++
			if _, taken := t.variants[cfg]; !taken {
				t.variants[cfg] = v.spec
			}
		}
		if matched == 0 {
			return nil, fmt.Errorf("cell type %s: variant %d matches no configuration", name, i)
		}
	}
	return t, nil
}

func matches(cfg *props.Configuration, when map[string]string) bool {
	for slot, want := range when {
		if got, _ := cfg.Value(slot); got != want {
			return false
		}
	}
	return true
}

func (t *Type) Name() string { return t.name }

func (t *Type) Orientation() orient.Handler { return t.handler }

func (t *Type) Definition() *props.Definition { return t.def }

func (t *Type) Default() *props.Configuration { return t.def.Default() }

// ModelSpec is the variant spec for cfg, or the type's base spec.
func (t *Type) ModelSpec(cfg *props.Configuration) mesh.Spec {
	if s, ok := t.variants[cfg]; ok {
		return s
	}
	return t.spec
}

// Place resolves the configuration a new cell of this type starts with.
func (t *Type) Place(p orient.Placement) *props.Configuration {
	return t.handler.ResolvePlacement(p, t.def.Default())
}

// Configuration looks up a configuration by slot name; omitted slots take
// their first value.
func (t *Type) Configuration(values map[string]string) (*props.Configuration, error) {
	return t.def.Lookup(values)
}

// MeshNames lists every mesh the type can draw with.
func (t *Type) MeshNames() []string {
	seen := map[string]bool{}
	var out []string
	add := func(s mesh.Spec) {
		if s.MeshName != "" && !seen[s.MeshName] {
			seen[s.MeshName] = true
			out = append(out, s.MeshName)
		}
	}
	add(t.spec)
	for _, cfg := range t.def.All() {
		if s, ok := t.variants[cfg]; ok {
			add(s)
		}
	}
	return out
}
