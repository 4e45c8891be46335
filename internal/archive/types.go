package archive

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// #region session-record
// SessionRecord is an archived puzzle session with its history.
type SessionRecord struct {
	SessionID  string
	Capacities []int
	Target     int
	Solved     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	EntryCount int
	Entries    []EntryRecord
}

// EntryRecord is one archived history snapshot. Seq is its history index.
type EntryRecord struct {
	EntryID     string    `json:"entry_id"`
	Seq         int       `json:"seq"`
	Amounts     []int     `json:"amounts"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Config returns the puzzle configuration of the session.
func (r SessionRecord) Config() puzzle.Config {
	return puzzle.Config{Capacities: append([]int(nil), r.Capacities...), Target: r.Target}
}

// States returns the archived snapshots in history order.
func (r SessionRecord) States() []puzzle.State {
	out := make([]puzzle.State, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = puzzle.State(e.Amounts).Clone()
	}
	return out
}

// #endregion session-record
