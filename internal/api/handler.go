package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/hivemind/internal/agent"
	"github.com/nidhogg/hivemind/internal/store"
	"go.uber.org/zap"
)

// Handler exposes the ops surface: health, runner status, an immediate
// heartbeat trigger and the action journal. It only observes the
// runtime; all agent behavior stays inside the heartbeat loop.
type Handler struct {
	runner  *agent.Runner
	journal *store.Journal
	started time.Time
	logger  *zap.Logger
}

// NewHandler creates the ops API handler. journal may be nil when
// journaling is disabled.
func NewHandler(runner *agent.Runner, journal *store.Journal, logger *zap.Logger) *Handler {
	return &Handler{
		runner:  runner,
		journal: journal,
		started: time.Now(),
		logger:  logger,
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Post("/heartbeat", h.handleHeartbeat)
		r.Get("/journal", h.handleJournal)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := h.runner.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agent":          status.Agent,
		"provider":       status.Provider,
		"cycles":         status.Cycles,
		"last_heartbeat": status.LastHeartbeat,
		"budget":         status.Budget,
		"uptime":         time.Since(h.started).String(),
	})
}

// handleHeartbeat wakes the run loop for an immediate cycle. The cycle
// itself still executes on the runner's own goroutine, so two
// heartbeats never overlap.
func (h *Handler) handleHeartbeat(w http.ResponseWriter, _ *http.Request) {
	h.runner.Wake()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "journal disabled"})
		return
	}
	actions, err := h.journal.Recent(r.Context(), 50)
	if err != nil {
		h.logger.Warn("journal query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "journal query failed"})
		return
	}
	if actions == nil {
		actions = []store.Action{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
