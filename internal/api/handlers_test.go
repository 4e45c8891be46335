package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchivedSession(t *testing.T) (*session.Session, *archive.Store) {
	t.Helper()
	store, err := archive.NewStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess := session.New()
	sess.Observe(archive.NewRecorder(store, sess, nil).Observe)
	return sess, store
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	r := NewRouter(NewHandler(session.New(), nil, nil))

	rec := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsExposed(t *testing.T) {
	sess := session.New()
	_, err := sess.Setup([]int{3, 5}, 4)
	require.NoError(t, err)
	r := NewRouter(NewHandler(sess, nil, nil))

	rec := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jugs_resets_total")
}

func TestStateBeforeSetup(t *testing.T) {
	r := NewRouter(NewHandler(session.New(), nil, nil))

	rec := get(t, r, "/v1/state")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStateAndHistory(t *testing.T) {
	sess := session.New()
	_, err := sess.Setup([]int{8, 5, 3}, 4)
	require.NoError(t, err)
	_, err = sess.Pour(0, 1)
	require.NoError(t, err)
	r := NewRouter(NewHandler(sess, nil, nil))

	rec := get(t, r, "/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var state StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, []int{3, 5, 0}, state.Amounts)
	assert.Equal(t, sess.ID(), state.SessionID)
	assert.False(t, state.Solved)

	rec = get(t, r, "/v1/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Pour 5 from jar 1 to jar 2", entries[1].Description)
	assert.Equal(t, 1, entries[1].Index)
}

func TestArchiveRoutesAbsentWithoutStore(t *testing.T) {
	r := NewRouter(NewHandler(session.New(), nil, nil))

	rec := get(t, r, "/v1/sessions")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArchivedSessions(t *testing.T) {
	sess, store := newArchivedSession(t)
	_, err := sess.Setup([]int{8, 5, 3}, 4)
	require.NoError(t, err)
	_, err = sess.Pour(0, 1)
	require.NoError(t, err)
	r := NewRouter(NewHandler(sess, store, nil))

	rec := get(t, r, "/v1/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Steps)
	assert.Empty(t, list[0].Entries)

	rec = get(t, r, "/v1/sessions/"+sess.ID())
	require.Equal(t, http.StatusOK, rec.Code)
	var one SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	require.Len(t, one.Entries, 2)
	assert.Equal(t, []int{3, 5, 0}, one.Entries[1].Amounts)

	rec = get(t, r, "/v1/sessions/"+sess.ID()+"/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "setup", events[0].EventType)
	assert.Equal(t, "pour", events[1].EventType)
}

func TestSessionNotFound(t *testing.T) {
	sess, store := newArchivedSession(t)
	r := NewRouter(NewHandler(sess, store, nil))

	rec := get(t, r, "/v1/sessions/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = get(t, r, "/v1/sessions/missing/events")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessionsBadLimit(t *testing.T) {
	sess, store := newArchivedSession(t)
	r := NewRouter(NewHandler(sess, store, nil))

	rec := get(t, r, "/v1/sessions?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Invalid limit"))
}
