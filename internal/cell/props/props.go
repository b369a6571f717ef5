// Package props defines the discrete property slots of a cell type and the
// interned configurations built from them.
//
// A Definition accepts at most MaxSlots slots and at most MaxCombinations
// value combinations. Both limits are checked while the cell type is being
// defined; once sealed, every combination exists as a single shared
// *Configuration, so configurations can be compared by pointer.
package props

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
)

const (
	MaxSlots        = 4
	MaxCombinations = 16
)

var (
	ErrTooManyProperties        = errors.New("too many properties")
	ErrCombinationLimitExceeded = errors.New("combination limit exceeded")
	ErrInvalidSlot              = errors.New("invalid property slot")
	ErrUnknownSlot              = errors.New("unknown property slot")
	ErrUnknownValue             = errors.New("unknown property value")
	ErrSealed                   = errors.New("definition sealed")
	ErrNotSealed                = errors.New("definition not sealed")
)

// Slot is a named axis with a fixed, ordered, non-empty set of values.
type Slot interface {
	Name() string
	PossibleValues() []string
}

// Registrar is the side of a Definition that orientation handlers and cell
// types use to declare slots.
type Registrar interface {
	DefineProperty(s Slot) error
}

// Source is a read-only view of the declared slots.
type Source interface {
	Slots() []Slot
	ValuesOf(s Slot) []string
}

// Enum is a Slot over a fixed list of names.
type Enum struct {
	name   string
	values []string
}

func NewEnum(name string, values ...string) Enum {
	return Enum{name: name, values: append([]string(nil), values...)}
}

func (e Enum) Name() string { return e.name }

func (e Enum) PossibleValues() []string { return append([]string(nil), e.values...) }

// Definition collects the slots of one cell type.
type Definition struct {
	owner  string
	slots  []Slot
	values [][]string
	debug  *log.Logger

	sealed  bool
	configs []*Configuration
}

func NewDefinition(owner string) *Definition {
	return &Definition{owner: owner}
}

// SetDebug enables slot tracing and the value table dump on l.
func (d *Definition) SetDebug(l *log.Logger) { d.debug = l }

func (d *Definition) Owner() string { return d.owner }

func (d *Definition) debugf(format string, args ...any) {
	if d.debug != nil {
		d.debug.Printf(format, args...)
	}
}

func (d *Definition) DefineProperty(s Slot) error {
	if d.sealed {
		return fmt.Errorf("%s: %w", d.owner, ErrSealed)
	}
	if s == nil || strings.TrimSpace(s.Name()) == "" {
		return fmt.Errorf("%s: %w: empty name", d.owner, ErrInvalidSlot)
	}
	d.debugf("props: add %s to %s", s.Name(), d.owner)
	if len(d.slots) >= MaxSlots {
		return fmt.Errorf("%s: %w: %s would be slot %d of %d", d.owner, ErrTooManyProperties, s.Name(), len(d.slots)+1, MaxSlots)
	}
	for _, o := range d.slots {
		if o.Name() == s.Name() {
			return fmt.Errorf("%s: %w: duplicate slot %s", d.owner, ErrInvalidSlot, s.Name())
		}
	}
	values := s.PossibleValues()
	if len(values) == 0 {
		return fmt.Errorf("%s: %w: %s has no values", d.owner, ErrInvalidSlot, s.Name())
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%s: %w: %s lists %q twice", d.owner, ErrInvalidSlot, s.Name(), v)
		}
		seen[v] = struct{}{}
	}
	d.slots = append(d.slots, s)
	d.values = append(d.values, values)
	d.debugf("props: %s now has %d properties", d.owner, len(d.slots))
	return nil
}

// Combinations is the product of slot cardinalities, saturating at
// math.MaxInt.
func (d *Definition) Combinations() int {
	n := 1
	for _, vs := range d.values {
		if n > math.MaxInt/len(vs) {
			return math.MaxInt
		}
		n *= len(vs)
	}
	return n
}

func (d *Definition) ValidateCombinationLimit() error {
	if d.debug != nil {
		d.dump()
	}
	n := 1
	for i, vs := range d.values {
		n *= len(vs)
		if n > MaxCombinations {
			return fmt.Errorf("%s: %w: at least %d combinations of property values once %s is added (%d allowed)", d.owner, ErrCombinationLimitExceeded, n, d.slots[i].Name(), MaxCombinations)
		}
	}
	return nil
}

func (d *Definition) dump() {
	d.debugf("props: properties of %s:", d.owner)
	for i, s := range d.slots {
		d.debugf("%d: %s", i, s.Name())
		for j, v := range d.values[i] {
			d.debugf("   %d: %s", j, v)
		}
	}
}

// Seal validates the limits and interns every combination. It is
// idempotent.
func (d *Definition) Seal() error {
	if d.sealed {
		return nil
	}
	if err := d.ValidateCombinationLimit(); err != nil {
		return err
	}
	n := d.Combinations()
	d.configs = make([]*Configuration, n)
	for i := 0; i < n; i++ {
		c := &Configuration{def: d, index: i, values: make([]string, len(d.slots))}
		rem := i
		for s := len(d.slots) - 1; s >= 0; s-- {
			k := len(d.values[s])
			c.values[s] = d.values[s][rem%k]
			rem /= k
		}
		d.configs[i] = c
	}
	d.sealed = true
	return nil
}

func (d *Definition) Sealed() bool { return d.sealed }

func (d *Definition) Slots() []Slot { return append([]Slot(nil), d.slots...) }

func (d *Definition) ValuesOf(s Slot) []string {
	if i := d.slotIndex(s.Name()); i >= 0 {
		return append([]string(nil), d.values[i]...)
	}
	return nil
}

func (d *Definition) slotIndex(name string) int {
	for i, s := range d.slots {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func (d *Definition) valueIndex(slot int, v string) int {
	for i, x := range d.values[slot] {
		if x == v {
			return i
		}
	}
	return -1
}

// Default is the configuration with every slot at its first value.
func (d *Definition) Default() *Configuration {
	if !d.sealed {
		return nil
	}
	return d.configs[0]
}

func (d *Definition) Len() int { return len(d.configs) }

func (d *Definition) ByIndex(i int) (*Configuration, error) {
	if !d.sealed {
		return nil, fmt.Errorf("%s: %w", d.owner, ErrNotSealed)
	}
	if i < 0 || i >= len(d.configs) {
		return nil, fmt.Errorf("%s: configuration index %d out of range", d.owner, i)
	}
	return d.configs[i], nil
}

// All returns every interned configuration in index order.
func (d *Definition) All() []*Configuration { return append([]*Configuration(nil), d.configs...) }

// Configuration returns the interned configuration for one value per slot,
// in slot order.
func (d *Definition) Configuration(values ...string) (*Configuration, error) {
	if !d.sealed {
		return nil, fmt.Errorf("%s: %w", d.owner, ErrNotSealed)
	}
	if len(values) != len(d.slots) {
		return nil, fmt.Errorf("%s: want %d values, got %d", d.owner, len(d.slots), len(values))
	}
	idx := 0
	for s, v := range values {
		j := d.valueIndex(s, v)
		if j < 0 {
			return nil, fmt.Errorf("%s: %w: %s=%q", d.owner, ErrUnknownValue, d.slots[s].Name(), v)
		}
		idx = idx*len(d.values[s]) + j
	}
	return d.configs[idx], nil
}

// Lookup resolves named values; slots left out take their first value.
func (d *Definition) Lookup(named map[string]string) (*Configuration, error) {
	if !d.sealed {
		return nil, fmt.Errorf("%s: %w", d.owner, ErrNotSealed)
	}
	for name := range named {
		if d.slotIndex(name) < 0 {
			return nil, fmt.Errorf("%s: %w: %s", d.owner, ErrUnknownSlot, name)
		}
	}
	values := make([]string, len(d.slots))
	for i, s := range d.slots {
		if v, ok := named[s.Name()]; ok {
			values[i] = v
		} else {
			values[i] = d.values[i][0]
		}
	}
	return d.Configuration(values...)
}

// With returns the configuration equal to c except for one slot.
func (d *Definition) With(c *Configuration, slot, value string) (*Configuration, error) {
	if c == nil || c.def != d {
		return nil, fmt.Errorf("%s: configuration belongs to another definition", d.owner)
	}
	i := d.slotIndex(slot)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w: %s", d.owner, ErrUnknownSlot, slot)
	}
	values := append([]string(nil), c.values...)
	values[i] = value
	return d.Configuration(values...)
}
