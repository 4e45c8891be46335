package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter configures every route. Archive routes exist only when the
// handler has a store.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")

	if h.store != nil {
		api.HandleFunc("/sessions", h.ListSessions).Methods("GET")
		api.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
		api.HandleFunc("/sessions/{id}/events", h.GetSessionEvents).Methods("GET")
	}
	return r
}
