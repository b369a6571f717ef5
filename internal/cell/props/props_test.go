package props

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"testing"
)

func enum(name string, n int) Enum {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = name + strconv.Itoa(i)
	}
	return NewEnum(name, vs...)
}

func TestDefineProperty_FifthSlotFails(t *testing.T) {
	d := NewDefinition("lamp")
	for i := 0; i < MaxSlots; i++ {
		if err := d.DefineProperty(enum(string(rune('p'+i)), 1)); err != nil {
			t.Fatalf("slot %d: %v", i, err)
		}
	}
	err := d.DefineProperty(enum("extra", 1))
	if !errors.Is(err, ErrTooManyProperties) {
		t.Fatalf("expected ErrTooManyProperties, got %v", err)
	}
	if len(d.Slots()) != MaxSlots {
		t.Fatalf("failed slot was recorded: %d slots", len(d.Slots()))
	}
}

func TestDefineProperty_RejectsBadSlots(t *testing.T) {
	d := NewDefinition("x")
	if err := d.DefineProperty(NewEnum("", "a")); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("empty name: %v", err)
	}
	if err := d.DefineProperty(NewEnum("empty")); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("no values: %v", err)
	}
	if err := d.DefineProperty(NewEnum("dup", "a", "a")); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("repeated value: %v", err)
	}
	if err := d.DefineProperty(NewEnum("facing", "north", "south")); err != nil {
		t.Fatalf("valid slot: %v", err)
	}
	if err := d.DefineProperty(NewEnum("facing", "up")); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("duplicate name: %v", err)
	}
}

func TestValidateCombinationLimit(t *testing.T) {
	cases := []struct {
		name   string
		sizes  []int
		wantOK bool
	}{
		{name: "none", sizes: nil, wantOK: true},
		{name: "four facings", sizes: []int{4}, wantOK: true},
		{name: "sixteen", sizes: []int{4, 2, 2}, wantOK: true},
		{name: "seventeen", sizes: []int{17}, wantOK: false},
		{name: "eighteen", sizes: []int{3, 3, 2}, wantOK: false},
		{name: "thirty two", sizes: []int{2, 2, 2, 4}, wantOK: false},
		{name: "product wraps to zero", sizes: []int{1 << 16, 1 << 16, 1 << 16, 1 << 16}, wantOK: false},
		{name: "product wraps negative", sizes: []int{1 << 16, 1 << 16, 1 << 16, 1 << 15}, wantOK: false},
	}
	for _, c := range cases {
		d := NewDefinition(c.name)
		for i, n := range c.sizes {
			if err := d.DefineProperty(enum(string(rune('p'+i)), n)); err != nil {
				t.Fatalf("%s: define: %v", c.name, err)
			}
		}
		err := d.ValidateCombinationLimit()
		if c.wantOK && err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if !c.wantOK && !errors.Is(err, ErrCombinationLimitExceeded) {
			t.Fatalf("%s: expected ErrCombinationLimitExceeded, got %v", c.name, err)
		}
		if !c.wantOK {
			if n := d.Combinations(); n <= MaxCombinations {
				t.Fatalf("%s: Combinations()=%d", c.name, n)
			}
			if err := d.Seal(); err == nil {
				t.Fatalf("%s: seal must fail", c.name)
			}
			if d.Sealed() || d.Default() != nil {
				t.Fatalf("%s: failed seal left configurations behind", c.name)
			}
		}
	}
}

func TestCombinations_Saturates(t *testing.T) {
	d := NewDefinition("huge")
	for i := 0; i < 4; i++ {
		if err := d.DefineProperty(enum(string(rune('p'+i)), 1<<16)); err != nil {
			t.Fatalf("define: %v", err)
		}
	}
	if n := d.Combinations(); n != math.MaxInt {
		t.Fatalf("Combinations()=%d want saturated", n)
	}
}

func TestSeal_InternsEveryCombination(t *testing.T) {
	d := NewDefinition("stairs")
	_ = d.DefineProperty(NewEnum("facing", "north", "east", "south", "west"))
	_ = d.DefineProperty(NewEnum("half", "bottom", "top"))
	if _, err := d.Configuration("north", "bottom"); !errors.Is(err, ErrNotSealed) {
		t.Fatalf("expected ErrNotSealed before seal, got %v", err)
	}
	if err := d.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if err := d.DefineProperty(NewEnum("late", "x")); !errors.Is(err, ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
	if d.Len() != 8 {
		t.Fatalf("len=%d", d.Len())
	}

	a, err := d.Configuration("south", "top")
	if err != nil {
		t.Fatalf("configuration: %v", err)
	}
	b, _ := d.Lookup(map[string]string{"half": "top", "facing": "south"})
	c, _ := d.Default().With("facing", "south")
	c, _ = c.With("half", "top")
	if a != b || a != c {
		t.Fatalf("configurations not interned: %p %p %p", a, b, c)
	}
	if got, _ := a.Value("facing"); got != "south" {
		t.Fatalf("facing=%q", got)
	}
	if a.String() != "facing=south,half=top" {
		t.Fatalf("string=%q", a.String())
	}
	byIdx, _ := d.ByIndex(a.Index())
	if byIdx != a {
		t.Fatalf("ByIndex mismatch")
	}

	seen := map[string]bool{}
	for _, cfg := range d.All() {
		seen[cfg.String()] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct configurations, got %d", len(seen))
	}

	if _, err := d.Configuration("up", "top"); !errors.Is(err, ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
	if _, err := d.Lookup(map[string]string{"color": "red"}); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestNoSlots_SingleDefault(t *testing.T) {
	d := NewDefinition("stone")
	if err := d.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if d.Len() != 1 || d.Default() == nil || d.Default().String() != "default" {
		t.Fatalf("unexpected default %v", d.Default())
	}
}

func TestDebugDump(t *testing.T) {
	var buf bytes.Buffer
	d := NewDefinition("lamp")
	d.SetDebug(log.New(&buf, "", 0))
	_ = d.DefineProperty(NewEnum("lit", "off", "on"))
	if err := d.ValidateCombinationLimit(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"add lit to lamp", "0: lit", "1: on"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}
