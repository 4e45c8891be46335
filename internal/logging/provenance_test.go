package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE provenance_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		entry_id    TEXT,
		event_type  TEXT NOT NULL,
		description TEXT,
		amounts     TEXT,
		solved      INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-event-tests
func TestLogEvent_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{
		SessionID:   "s1",
		EntryID:     "e1",
		EventType:   "pour",
		Description: "Pour 3 from jar 2 to jar 1",
		Amounts:     []int{3, 2},
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogEvent(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM provenance_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var eventType, amounts string
	db.QueryRow("SELECT event_type, amounts FROM provenance_log").Scan(&eventType, &amounts)
	if eventType != "pour" {
		t.Errorf("expected event_type 'pour', got %q", eventType)
	}
	if amounts != "[3,2]" {
		t.Errorf("expected amounts '[3,2]', got %q", amounts)
	}
}

func TestLogEvent_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Millisecond)
	if err := LogEvent(db, ProvenanceEntry{SessionID: "s2", EventType: "reset"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM provenance_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEvent_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{
		SessionID: "s3",
		EventType: "no_op",
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogEvent(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entryID, desc, amounts sql.NullString
	db.QueryRow("SELECT entry_id, description, amounts FROM provenance_log").Scan(&entryID, &desc, &amounts)
	if entryID.Valid {
		t.Error("expected NULL entry_id for empty string")
	}
	if desc.Valid {
		t.Error("expected NULL description for empty string")
	}
	if amounts.Valid {
		t.Error("expected NULL amounts for nil slice")
	}
}

func TestLogEvent_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogEvent(db, ProvenanceEntry{SessionID: "s4", EventType: "pour"})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-event-tests

// #region list-events-tests
func TestListEvents_OrderAndFilter(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for _, e := range []ProvenanceEntry{
		{SessionID: "a", EventType: "setup", Amounts: []int{0, 5}},
		{SessionID: "b", EventType: "setup", Amounts: []int{8, 0, 0}},
		{SessionID: "a", EventType: "pour", EntryID: "e2", Amounts: []int{3, 2}, Description: "Pour 3 from jar 2 to jar 1"},
		{SessionID: "a", EventType: "solve", Solved: true},
	} {
		if err := LogEvent(db, e); err != nil {
			t.Fatalf("log event: %v", err)
		}
	}

	events, err := ListEvents(db, "a")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventType != "setup" || events[1].EventType != "pour" || events[2].EventType != "solve" {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[1].EntryID != "e2" || len(events[1].Amounts) != 2 || events[1].Amounts[0] != 3 {
		t.Errorf("pour row not round-tripped: %+v", events[1])
	}
	if !events[2].Solved || events[2].Amounts != nil {
		t.Errorf("solve row not round-tripped: %+v", events[2])
	}
}

// #endregion list-events-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	if result := nullIfEmpty(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	if result := nullIfEmpty("hello"); result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
