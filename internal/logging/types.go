package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table. EventType is
// one of the session event kinds: "setup" | "pour" | "no_op" | "reject" |
// "reset" | "rollback" | "solve".
type ProvenanceEntry struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	EntryID     string    `json:"entry_id,omitempty"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Amounts     []int     `json:"amounts"`
	Solved      bool      `json:"solved"`
	CreatedAt   time.Time `json:"created_at"`
}

// #endregion provenance-entry
