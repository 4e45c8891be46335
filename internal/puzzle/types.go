package puzzle

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// #region config
// Config is the puzzle definition for one session. Treat it as read-only once
// constructed; a new setup replaces it wholesale.
type Config struct {
	Capacities []int `json:"capacities" yaml:"capacities" validate:"required,min=1,dive,gt=0"`
	Target     int   `json:"target" yaml:"target" validate:"gt=0"`
}

// Jars returns the number of containers.
func (c Config) Jars() int {
	return len(c.Capacities)
}

// Clone returns a deep copy so callers can't alias the capacities slice.
func (c Config) Clone() Config {
	return Config{Capacities: slices.Clone(c.Capacities), Target: c.Target}
}

// #endregion config

// #region state
// State holds the fill amount of every jar, indexed like Config.Capacities.
type State []int

// Clone returns an independent copy of s.
func (s State) Clone() State {
	return slices.Clone(s)
}

// Equal reports element-wise equality. Jar identity matters, so [1,2] != [2,1].
func (s State) Equal(other State) bool {
	return slices.Equal(s, other)
}

// Contains reports whether any jar holds exactly quantity.
func (s State) Contains(quantity int) bool {
	return slices.Contains(s, quantity)
}

// Total returns the summed volume across all jars.
func (s State) Total() int {
	total := 0
	for _, a := range s {
		total += a
	}
	return total
}

// Key returns an injective encoding of s for use as a map key. Each amount is
// written as a self-delimiting varint, so [1,10] and [11,0] never collide.
func (s State) Key() string {
	buf := make([]byte, 0, len(s)*2)
	for _, a := range s {
		buf = binary.AppendVarint(buf, int64(a))
	}
	return string(buf)
}

// Apply returns the state after moving a.Quantity units from a.From to a.To.
// It does not check legality; callers compute the quantity with Quantity.
func (s State) Apply(a Action) State {
	next := s.Clone()
	next[a.From] -= a.Quantity
	next[a.To] += a.Quantity
	return next
}

// #endregion state

// #region action
// Action is a single pour of Quantity units from jar From to jar To (0-based).
type Action struct {
	From     int `json:"from"`
	To       int `json:"to"`
	Quantity int `json:"quantity"`
}

// Description renders the action with 1-based jar numbers for display.
func (a Action) Description() string {
	return fmt.Sprintf("Pour %d from jar %d to jar %d", a.Quantity, a.From+1, a.To+1)
}

// #endregion action
