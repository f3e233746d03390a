// Package api exposes the application over JSON HTTP plus a websocket
// state feed.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/questhub/questhub/internal/content"
	"github.com/questhub/questhub/internal/hub"
)

// ChallengeTracker remembers the last day a daily challenge was served.
// Satisfied by the persistence adapter.
type ChallengeTracker interface {
	LastChallengeDate(ctx context.Context) string
	SetLastChallengeDate(ctx context.Context, date string) error
}

// Server wires the state store, the content generator and the challenge
// tracker into an HTTP handler.
type Server struct {
	store     *hub.Store
	generator content.Generator
	tracker   ChallengeTracker
}

// NewServer creates the API server. tracker may be nil; the daily
// challenge then regenerates on every request.
func NewServer(store *hub.Store, generator content.Generator, tracker ChallengeTracker) *Server {
	return &Server{
		store:     store,
		generator: generator,
		tracker:   tracker,
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/badges", s.handleBadges)

	mux.HandleFunc("POST /api/quests", s.handleCreateQuest)
	mux.HandleFunc("DELETE /api/quests/{id}", s.handleDeleteQuest)
	mux.HandleFunc("POST /api/quests/{id}/tasks", s.handleAddTask)
	mux.HandleFunc("POST /api/quests/{id}/tasks/{taskID}/toggle", s.handleToggleTask)
	mux.HandleFunc("POST /api/quests/{id}/tasks/{taskID}/content", s.handleGenerateContent)

	mux.HandleFunc("POST /api/classes", s.handleCreateClass)
	mux.HandleFunc("DELETE /api/classes/{id}", s.handleDeleteClass)
	mux.HandleFunc("POST /api/classes/{id}/students", s.handleEnrollStudent)
	mux.HandleFunc("POST /api/classes/{id}/students/import", s.handleImportRoster)
	mux.HandleFunc("DELETE /api/classes/{id}/students/{studentID}", s.handleRemoveStudent)

	mux.HandleFunc("POST /api/tutor", s.handleTutor)
	mux.HandleFunc("POST /api/daily-challenge", s.handleDailyChallenge)

	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
