package archive

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/jugs/internal/session"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	capacities  TEXT NOT NULL,
	target      INTEGER NOT NULL,
	solved      INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_entries (
	entry_id    TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	amounts     TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	entry_id    TEXT,
	event_type  TEXT NOT NULL,
	description TEXT,
	amounts     TEXT,
	solved      INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store-struct
// Store archives puzzle sessions in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	s, err := NewStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an open database and runs migrations.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save-session
// SaveSession upserts the session row and replaces its history atomically, so
// a rollback in the live session also truncates the archive.
func (s *Store) SaveSession(rec SessionRecord) error {
	capsJSON, err := json.Marshal(rec.Capacities)
	if err != nil {
		return fmt.Errorf("marshal capacities: %w", err)
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (session_id, capacities, target, solved, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET solved = excluded.solved, updated_at = excluded.updated_at`,
		rec.SessionID, string(capsJSON), rec.Target, rec.Solved,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM history_entries WHERE session_id = ?`, rec.SessionID); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	for _, e := range rec.Entries {
		amounts, err := json.Marshal(e.Amounts)
		if err != nil {
			return fmt.Errorf("marshal amounts: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO history_entries (entry_id, session_id, seq, amounts, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.EntryID, rec.SessionID, e.Seq, string(amounts), e.Description,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", e.Seq, err)
		}
	}

	return tx.Commit()
}

// #endregion save-session

// #region get-session
// GetSession retrieves a session and its history by ID.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	var rec SessionRecord
	var capsJSON, createdStr, updatedStr string

	err := s.db.QueryRow(
		`SELECT session_id, capacities, target, solved, created_at, updated_at
		 FROM sessions WHERE session_id = ?`, id,
	).Scan(&rec.SessionID, &capsJSON, &rec.Target, &rec.Solved, &createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(capsJSON), &rec.Capacities); err != nil {
		return SessionRecord{}, fmt.Errorf("unmarshal capacities: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)

	rows, err := s.db.Query(
		`SELECT entry_id, seq, amounts, description, created_at
		 FROM history_entries WHERE session_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e EntryRecord
		var amounts, created string
		if err := rows.Scan(&e.EntryID, &e.Seq, &amounts, &e.Description, &created); err != nil {
			return SessionRecord{}, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(amounts), &e.Amounts); err != nil {
			return SessionRecord{}, fmt.Errorf("unmarshal amounts: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		rec.Entries = append(rec.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return SessionRecord{}, err
	}
	rec.EntryCount = len(rec.Entries)
	return rec, nil
}

// #endregion get-session

// #region list-sessions
// ListSessions returns the most recently updated sessions without their entries.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT s.session_id, s.capacities, s.target, s.solved, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM history_entries h WHERE h.session_id = s.session_id)
		 FROM sessions s ORDER BY s.updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var capsJSON, createdStr, updatedStr string
		if err := rows.Scan(&rec.SessionID, &capsJSON, &rec.Target, &rec.Solved,
			&createdStr, &updatedStr, &rec.EntryCount); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(capsJSON), &rec.Capacities); err != nil {
			return nil, fmt.Errorf("unmarshal capacities: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-sessions

// #region snapshot
// FromSnapshot converts a live session snapshot into an archive record.
func FromSnapshot(snap session.Snapshot) SessionRecord {
	rec := SessionRecord{
		SessionID:  snap.SessionID,
		Capacities: append([]int(nil), snap.Config.Capacities...),
		Target:     snap.Config.Target,
		Solved:     snap.Solved,
		EntryCount: len(snap.Entries),
		UpdatedAt:  time.Now().UTC(),
	}
	for i, e := range snap.Entries {
		if i == 0 {
			rec.CreatedAt = e.CreatedAt
		}
		rec.Entries = append(rec.Entries, EntryRecord{
			EntryID:     e.ID,
			Seq:         i,
			Amounts:     append([]int(nil), e.Amounts...),
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return rec
}

// #endregion snapshot
