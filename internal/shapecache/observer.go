package shapecache

import "time"

// Derivation describes one shape computation.
type Derivation struct {
	At       time.Time     `json:"at"`
	Cell     string        `json:"cell"`
	Config   string        `json:"config,omitempty"`
	Pos      [3]int        `json:"pos"`
	Mesh     string        `json:"mesh,omitempty"`
	Boxes    int           `json:"boxes"`
	Empty    bool          `json:"empty,omitempty"`
	Err      string        `json:"err,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Observer is told about every derivation after its result is published.
// It is called without locks held and must be safe for concurrent use.
type Observer interface {
	Derived(d Derivation)
}

type ObserverFunc func(d Derivation)

func (f ObserverFunc) Derived(d Derivation) { f(d) }
