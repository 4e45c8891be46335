// Package api serves read-only JSON views of the live session and the archive,
// plus Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/logging"
	"github.com/danielpatrickdp/jugs/internal/session"
	"github.com/gorilla/mux"
)

const defaultListLimit = 20

// #region responses
// StateResponse is the body of GET /v1/state.
type StateResponse struct {
	SessionID  string `json:"session_id"`
	Capacities []int  `json:"capacities"`
	Target     int    `json:"target"`
	Amounts    []int  `json:"amounts"`
	Solved     bool   `json:"solved"`
}

// EntryResponse is one history entry.
type EntryResponse struct {
	ID          string    `json:"id"`
	Index       int       `json:"index"`
	Amounts     []int     `json:"amounts"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionResponse is an archived session.
type SessionResponse struct {
	SessionID  string          `json:"session_id"`
	Capacities []int           `json:"capacities"`
	Target     int             `json:"target"`
	Solved     bool            `json:"solved"`
	Steps      int             `json:"steps"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Entries    []EntryResponse `json:"entries,omitempty"`
}

// EventResponse is one provenance row.
type EventResponse struct {
	EventType   string    `json:"event_type"`
	EntryID     string    `json:"entry_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Amounts     []int     `json:"amounts,omitempty"`
	Solved      bool      `json:"solved"`
	CreatedAt   time.Time `json:"created_at"`
}

// #endregion responses

// #region handler
// Handler serves the JSON endpoints. store may be nil when archiving is off.
type Handler struct {
	sess   *session.Session
	store  *archive.Store
	logger *slog.Logger
}

// NewHandler creates a handler over the live session and optional archive.
func NewHandler(sess *session.Session, store *archive.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sess: sess, store: store, logger: logger}
}

// GetState handles GET /v1/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sess.Snapshot()
	if errors.Is(err, session.ErrNotConfigured) {
		http.Error(w, "Session not configured", http.StatusConflict)
		return
	}
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		SessionID:  snap.SessionID,
		Capacities: snap.Config.Capacities,
		Target:     snap.Config.Target,
		Amounts:    snap.Entries[len(snap.Entries)-1].Amounts,
		Solved:     snap.Solved,
	})
}

// GetHistory handles GET /v1/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.sess.History()
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{ID: e.ID, Index: i, Amounts: e.Amounts, Description: e.Description, CreatedAt: e.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListSessions handles GET /v1/sessions?limit=N
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := h.store.ListSessions(limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	out := make([]SessionResponse, len(records))
	for i, rec := range records {
		out[i] = sessionResponse(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSession handles GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	resp := sessionResponse(rec)
	resp.Entries = make([]EntryResponse, len(rec.Entries))
	for i, e := range rec.Entries {
		resp.Entries[i] = EntryResponse{ID: e.EntryID, Index: e.Seq, Amounts: e.Amounts, Description: e.Description, CreatedAt: e.CreatedAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSessionEvents handles GET /v1/sessions/{id}/events
func (h *Handler) GetSessionEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.lookup(w, id); !ok {
		return
	}
	events, err := logging.ListEvents(h.store.DB(), id)
	if err != nil {
		h.internalError(w, err)
		return
	}
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = EventResponse{
			EventType:   e.EventType,
			EntryID:     e.EntryID,
			Description: e.Description,
			Amounts:     e.Amounts,
			Solved:      e.Solved,
			CreatedAt:   e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// #endregion handler

// #region helpers
func (h *Handler) lookup(w http.ResponseWriter, id string) (archive.SessionRecord, bool) {
	rec, err := h.store.GetSession(id)
	if errors.Is(err, archive.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return archive.SessionRecord{}, false
	}
	if err != nil {
		h.internalError(w, err)
		return archive.SessionRecord{}, false
	}
	return rec, true
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("api request failed", "error", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func sessionResponse(rec archive.SessionRecord) SessionResponse {
	return SessionResponse{
		SessionID:  rec.SessionID,
		Capacities: rec.Capacities,
		Target:     rec.Target,
		Solved:     rec.Solved,
		Steps:      rec.EntryCount,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// #endregion helpers
