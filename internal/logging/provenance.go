package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-event
// LogEvent writes a provenance entry to the provenance_log table.
func LogEvent(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var amounts interface{}
	if entry.Amounts != nil {
		b, err := json.Marshal(entry.Amounts)
		if err != nil {
			return fmt.Errorf("marshal amounts: %w", err)
		}
		amounts = string(b)
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (session_id, entry_id, event_type, description, amounts, solved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		nullIfEmpty(entry.EntryID),
		entry.EventType,
		nullIfEmpty(entry.Description),
		amounts,
		entry.Solved,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region list-events
// ListEvents returns the provenance rows of a session in insertion order.
func ListEvents(db *sql.DB, sessionID string) ([]ProvenanceEntry, error) {
	rows, err := db.Query(
		`SELECT id, session_id, entry_id, event_type, description, amounts, solved, created_at
		 FROM provenance_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var entryID, desc, amounts sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.SessionID, &entryID, &e.EventType, &desc, &amounts, &e.Solved, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.EntryID = entryID.String
		e.Description = desc.String
		if amounts.Valid {
			if err := json.Unmarshal([]byte(amounts.String), &e.Amounts); err != nil {
				return nil, fmt.Errorf("unmarshal amounts: %w", err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
