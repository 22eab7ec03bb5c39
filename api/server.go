// Package api serves run history over a small JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/metnet-xyz/go-metnet/store"
)

// Server exposes stored runs over HTTP.
type Server struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the backing run store.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new server with the given options. Without a
// store option it serves an empty in-memory store.
func NewServer(opts ...Option) *Server {
	s := &Server{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	return s
}

// Mux returns an http.ServeMux with all routes configured.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRun)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// RunSummary is the listing view of a run. The full artifact is only
// returned when fetching a single run.
type RunSummary struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Model     string          `json:"model"`
	Status    string          `json:"status"`
	Objective float64         `json:"objective"`
	Created   time.Time       `json:"created"`
	Results   json.RawMessage `json:"results,omitempty"`
}

// RunList is the response body for the runs listing.
type RunList struct {
	Runs []RunSummary `json:"runs"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}

	list := RunList{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		list.Runs = append(list.Runs, summarize(run, false))
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.store.GetRun(r.Context(), id)
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			s.logger.Error("get run failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "get run failed")
			return
		}
		writeJSON(w, http.StatusOK, summarize(run, true))

	case http.MethodDelete:
		err := s.store.DeleteRun(r.Context(), id)
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			s.logger.Error("delete run failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete run failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "metnet"})
}

func summarize(run *store.Run, withResults bool) RunSummary {
	summary := RunSummary{
		ID:        run.ID,
		Kind:      run.Kind,
		Model:     run.Model,
		Status:    run.Status,
		Objective: run.Objective,
		Created:   run.Created,
	}
	if withResults && len(run.Payload) > 0 {
		summary.Results = json.RawMessage(run.Payload)
	}
	return summary
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
