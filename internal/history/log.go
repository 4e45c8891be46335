package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"github.com/google/uuid"
)

// ErrOutOfRange is returned for an index outside [0, Len()).
var ErrOutOfRange = errors.New("history index out of range")

// #region entry
// Entry is an immutable snapshot recorded after a state change.
type Entry struct {
	ID          string
	Amounts     puzzle.State
	Description string
	CreatedAt   time.Time
}

func (e Entry) clone() Entry {
	e.Amounts = e.Amounts.Clone()
	return e
}

// #endregion entry

// #region log
// Log is the ordered record of accepted transitions. Insertion order is the
// only index order. It is not safe for concurrent use.
type Log struct {
	entries []Entry
	now     func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// #endregion log

// #region append
// Append records a snapshot of amounts with the current time.
func (l *Log) Append(amounts puzzle.State, description string) Entry {
	e := Entry{
		ID:          uuid.New().String(),
		Amounts:     amounts.Clone(),
		Description: description,
		CreatedAt:   l.now(),
	}
	l.entries = append(l.entries, e)
	return e.clone()
}

// #endregion append

// #region truncate
// Truncate discards every entry after index and returns the entry at index.
// Out-of-range indices leave the log untouched.
func (l *Log) Truncate(index int) (Entry, error) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(l.entries))
	}
	clear(l.entries[index+1:])
	l.entries = l.entries[:index+1]
	return l.entries[index].clone(), nil
}

// #endregion truncate

// #region clear
// Clear drops every entry. Used by setup and reset, never by rollback.
func (l *Log) Clear() {
	clear(l.entries)
	l.entries = l.entries[:0]
}

// #endregion clear

// #region queries
// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// At returns a copy of the entry at index.
func (l *Log) At(index int) (Entry, error) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(l.entries))
	}
	return l.entries[index].clone(), nil
}

// Entries returns a deep copy of the log in chronological order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// #endregion queries
