package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"snipe-holdem/internal/store"
)

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st != nil {
			if err := st.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unreachable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// snapshotHandler serves a room's latest persisted snapshot so clients that
// detect a version gap can resync without incremental replay.
func snapshotHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "persistence disabled"})
			return
		}
		snap, err := st.GetLatestSnapshot(r.Context(), chi.URLParam(r, "roomID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot load failed"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// eventsHandler exposes the append-only journal for audit and debugging.
func eventsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "persistence disabled"})
			return
		}
		fromVersion := 0
		if v := r.URL.Query().Get("from_version"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad from_version"})
				return
			}
			fromVersion = parsed
		}
		events, err := st.GetEvents(r.Context(), chi.URLParam(r, "roomID"), fromVersion)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "journal read failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
