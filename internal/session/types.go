package session

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/jugs/internal/history"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

var (
	// ErrNotConfigured is returned by every operation before the first Setup.
	ErrNotConfigured = errors.New("session not configured")
	// ErrReplayDiverged is returned when a replayed pour moves a different
	// quantity than the solution expected.
	ErrReplayDiverged = errors.New("replay diverged from solution")
	// ErrInvariant is returned in strict mode when a pour breaks a physical invariant.
	ErrInvariant = errors.New("transition invariant violated")
	// ErrRejected is returned by PourIf when the screening step refuses a pour.
	ErrRejected = errors.New("pour rejected")
)

// InitialDescription labels the snapshot recorded by setup and reset.
const InitialDescription = "Initial state"

// #region event
// EventKind names what happened in a session.
type EventKind string

const (
	EventSetup    EventKind = "setup"
	EventPour     EventKind = "pour"
	EventNoOp     EventKind = "no_op"
	EventReject   EventKind = "reject"
	EventReset    EventKind = "reset"
	EventRollback EventKind = "rollback"
	EventSolve    EventKind = "solve"
)

// Event is emitted after every session operation, in place of a reactive
// UI binding. EntryID and Index are set when the history changed.
type Event struct {
	Seq         uint64 // per-session-object order of emission, starting at 1
	SessionID   string
	Kind        EventKind
	EntryID     string
	Index       int // history index of EntryID, -1 if none
	Amounts     puzzle.State
	Description string
	Solved      bool
	At          time.Time
}

// #endregion event

// #region snapshot
// Snapshot is a consistent copy of a session's config and history.
type Snapshot struct {
	SessionID string
	Config    puzzle.Config
	Entries   []history.Entry
	Solved    bool
}

// #endregion snapshot
