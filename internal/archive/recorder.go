package archive

import (
	"log/slog"

	"github.com/danielpatrickdp/jugs/internal/logging"
	"github.com/danielpatrickdp/jugs/internal/session"
)

// #region recorder
// Recorder mirrors a live session into the store: every event goes to the
// provenance log and every history change rewrites the archived session.
type Recorder struct {
	store  *Store
	sess   *session.Session
	logger *slog.Logger
}

// NewRecorder returns a recorder for sess. Register Observe with the session.
func NewRecorder(store *Store, sess *session.Session, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, sess: sess, logger: logger}
}

// Observe handles one session event. Failures are logged, never returned, so
// archiving cannot block play.
func (r *Recorder) Observe(ev session.Event) {
	switch ev.Kind {
	case session.EventSetup, session.EventPour, session.EventReset, session.EventRollback:
		snap, err := r.sess.Snapshot()
		if err != nil {
			r.logger.Error("archive snapshot", "session_id", ev.SessionID, "error", err)
			return
		}
		if snap.SessionID != ev.SessionID {
			// a newer setup already replaced this session
			return
		}
		if err := r.store.SaveSession(FromSnapshot(snap)); err != nil {
			r.logger.Error("archive save", "session_id", ev.SessionID, "error", err)
			return
		}
	}

	err := logging.LogEvent(r.store.DB(), logging.ProvenanceEntry{
		SessionID:   ev.SessionID,
		EntryID:     ev.EntryID,
		EventType:   string(ev.Kind),
		Description: ev.Description,
		Amounts:     ev.Amounts,
		Solved:      ev.Solved,
		CreatedAt:   ev.At,
	})
	if err != nil {
		r.logger.Error("provenance log", "session_id", ev.SessionID, "kind", string(ev.Kind), "error", err)
	}
}

// #endregion recorder
