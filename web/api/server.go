// Package api exposes the task store and planner over a small JSON HTTP
// API (SPEC_FULL §D.2), adapted from the teacher's own net/http server.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hochfrequenz/task-engine/internal/lifecycle"
	"github.com/hochfrequenz/task-engine/internal/planner"
	"github.com/hochfrequenz/task-engine/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	store       store.TaskStore
	lifecycle   *lifecycle.Manager
	plannerOpts planner.Options
	addr        string
	mux         *http.ServeMux
	sseHub      *SSEHub
}

// NewServer creates a new API server.
func NewServer(st store.TaskStore, lc *lifecycle.Manager, plannerOpts planner.Options, addr string) *Server {
	s := &Server{
		store:       st,
		lifecycle:   lc,
		plannerOpts: plannerOpts,
		addr:        addr,
		mux:         http.NewServeMux(),
		sseHub:      NewSSEHub(),
	}
	s.setupRoutes()
	go s.sseHub.Run()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/tasks", s.tasksHandler())
	s.mux.HandleFunc("/api/tasks/", s.taskByIDHandler())
	s.mux.HandleFunc("/api/plan", s.planHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return http.ListenAndServe(s.addr, s.mux)
}

// Broadcast sends an event to all SSE clients.
func (s *Server) Broadcast(event SSEEvent) {
	s.sseHub.Broadcast(event)
}

// taskByIDHandler dispatches on both the trailing path segment (an id, or
// an id plus an action) and the method, the way the teacher's
// /api/agents/{id}/{action} routing did.
func (s *Server) taskByIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
		switch {
		case strings.HasSuffix(path, "/complete"):
			s.completeTaskHandler().ServeHTTP(w, r)
		case strings.HasSuffix(path, "/reopen"):
			s.reopenTaskHandler().ServeHTTP(w, r)
		default:
			s.taskHandler().ServeHTTP(w, r)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
