// Package server exposes the sync mirror as a JSON API over chi.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hkarvonen/tickd/internal/mirror"
)

// Store is what the handlers need from the persistence layer.
type Store interface {
	ListTimers(ctx context.Context, principal string) ([]mirror.Record, error)
	UpsertTimers(ctx context.Context, principal string, records []mirror.Record) error
	DeleteTimer(ctx context.Context, principal, name string) error
	InsertActivity(ctx context.Context, principal string, rec mirror.ActivityRecord) error
	ListActivities(ctx context.Context, principal string) ([]mirror.ActivityRecord, error)
}

type Server struct {
	store  Store
	logger *log.Logger
}

// NewRouter builds the full route tree.
func NewRouter(store Store, logger *log.Logger) http.Handler {
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1/principals/{principal}", func(r chi.Router) {
		r.Get("/timers", s.handleListTimers)
		r.Put("/timers", s.handleUpsertTimers)
		r.Delete("/timers/{name}", s.handleDeleteTimer)
		r.Get("/activities", s.handleListActivities)
		r.Post("/activities", s.handleInsertActivity)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTimers(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	records, err := s.store.ListTimers(r.Context(), principal)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []mirror.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUpsertTimers(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	var records []mirror.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	for _, rec := range records {
		if rec.TimerName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "timer_name is required"})
			return
		}
	}
	if err := s.store.UpsertTimers(r.Context(), principal, records); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(records)})
}

func (s *Server) handleDeleteTimer(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	name := chi.URLParam(r, "name")
	if err := s.store.DeleteTimer(r.Context(), principal, name); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	records, err := s.store.ListActivities(r.Context(), principal)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []mirror.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleInsertActivity(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	var rec mirror.ActivityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if rec.ActivityName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "activity_name is required"})
		return
	}
	if err := s.store.InsertActivity(r.Context(), principal, rec); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if s.logger != nil {
		s.logger.Printf("Server: request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
