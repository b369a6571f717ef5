package props

import "strings"

// Configuration is one interned combination of slot values. Two
// configurations of the same Definition are equal iff they are the same
// pointer.
type Configuration struct {
	def    *Definition
	index  int
	values []string
}

func (c *Configuration) Definition() *Definition { return c.def }

// Index is the position of c in Definition.All.
func (c *Configuration) Index() int { return c.index }

func (c *Configuration) Value(slot string) (string, bool) {
	if i := c.def.slotIndex(slot); i >= 0 {
		return c.values[i], true
	}
	return "", false
}

func (c *Configuration) Values() []string { return append([]string(nil), c.values...) }

// Map returns slot name → value.
func (c *Configuration) Map() map[string]string {
	out := make(map[string]string, len(c.values))
	for i, s := range c.def.slots {
		out[s.Name()] = c.values[i]
	}
	return out
}

func (c *Configuration) With(slot, value string) (*Configuration, error) {
	return c.def.With(c, slot, value)
}

func (c *Configuration) String() string {
	if len(c.values) == 0 {
		return "default"
	}
	parts := make([]string, len(c.values))
	for i, s := range c.def.slots {
		parts[i] = s.Name() + "=" + c.values[i]
	}
	return strings.Join(parts, ",")
}
