// Package api implements the HTTP surface: routing, permission gating and
// the JSON handlers for every record collection.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/maplecrm/records-api/internal/audit"
	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/metrics"
	"github.com/maplecrm/records-api/internal/middleware"
	"github.com/maplecrm/records-api/internal/perm"
)

// Server holds the handler dependencies.
type Server struct {
	store     Store
	validator *auth.Validator
	recorder  *audit.Recorder
	logger    *slog.Logger
}

// NewServer creates a Server.
func NewServer(store Store, validator *auth.Validator, recorder *audit.Recorder, logger *slog.Logger) *Server {
	return &Server{
		store:     store,
		validator: validator,
		recorder:  recorder,
		logger:    logger,
	}
}

// routeRequirement names the (category, level) a route demands.
type routeRequirement struct {
	category perm.Category
	level    perm.Level
}

// maxRequestBody bounds request bodies; record payloads are small.
const maxRequestBody = 1 << 20

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(metrics.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.MaxBodySize(maxRequestBody))

	// Public endpoints (no auth)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.validator))

		r.Get("/leads", s.require(perm.CategoryRecords, perm.LevelView, s.handleListLeads))
		r.Post("/leads", s.handleCreateLead)
		r.Get("/leads/{id}", s.require(perm.CategoryRecords, perm.LevelView, s.handleGetLead))
		r.Patch("/leads/{id}", s.handleUpdateLead)

		r.Get("/contacts", s.require(perm.CategoryRecords, perm.LevelView, s.handleListContacts))
		r.Post("/contacts", s.handleCreateContact)
		r.Get("/contacts/{id}", s.require(perm.CategoryRecords, perm.LevelView, s.handleGetContact))
		r.Patch("/contacts/{id}", s.handleUpdateContact)

		r.Get("/conversations", s.require(perm.CategoryInbox, perm.LevelView, s.handleListConversations))
		r.Post("/conversations", s.require(perm.CategoryInbox, perm.LevelSend, s.handleCreateConversation))
		r.Get("/conversations/{id}", s.require(perm.CategoryInbox, perm.LevelView, s.handleGetConversation))
		r.Patch("/conversations/{id}", s.require(perm.CategoryInbox, perm.LevelManage, s.handleUpdateConversation))
		r.Get("/conversations/{id}/messages", s.require(perm.CategoryInbox, perm.LevelView, s.handleListMessages))
		r.Post("/conversations/{id}/messages", s.require(perm.CategoryInbox, perm.LevelSend, s.handleCreateMessage))

		r.Get("/tasks", s.require(perm.CategoryTasks, perm.LevelView, s.handleListTasks))
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{id}", s.require(perm.CategoryTasks, perm.LevelView, s.handleGetTask))
		r.Patch("/tasks/{id}", s.handleUpdateTask)

		r.Get("/reports/summary", s.require(perm.CategoryReporting, perm.LevelView, s.handleReportSummary))

		r.Get("/team/members", s.require(perm.CategoryTeam, perm.LevelView, s.handleListMembers))
		r.Post("/team/members", s.require(perm.CategoryTeam, perm.LevelManage, s.handleCreateMember))
		r.Get("/team/members/{id}", s.require(perm.CategoryTeam, perm.LevelView, s.handleGetMember))
		r.Patch("/team/members/{id}", s.require(perm.CategoryTeam, perm.LevelManage, s.handleUpdateMember))

		r.Get("/credentials", s.require(perm.CategoryCredentials, perm.LevelView, s.handleListCredentials))
		r.Post("/credentials", s.require(perm.CategoryCredentials, perm.LevelManage, s.handleCreateCredential))
		r.Delete("/credentials/{id}", s.require(perm.CategoryCredentials, perm.LevelManage, s.handleRevokeCredential))

		r.Get("/settings", s.require(perm.CategoryConfiguration, perm.LevelView, s.handleListSettings))
		r.Get("/settings/{key}", s.require(perm.CategoryConfiguration, perm.LevelView, s.handleGetSetting))
		r.Put("/settings/{key}", s.require(perm.CategoryConfiguration, perm.LevelManage, s.handleSetSetting))

		r.Get("/audit", s.require(perm.CategoryAudit, perm.LevelView, s.handleListAudit))
	})

	return r
}

// require wraps a handler with a fixed permission check. Handlers whose
// required level depends on the request (edit vs edit_own) do their own
// checks instead.
func (s *Server) require(cat perm.Category, level perm.Level, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := s.requireLevel(w, r, routeRequirement{category: cat, level: level}); id == nil {
			return
		}
		h(w, r)
	}
}

// handleHealth reports process liveness.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness, including a storage ping.
// GET /ready
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		s.logger.Error("readiness check failed", "error", err)
		WriteError(w, http.StatusServiceUnavailable, ErrCodeInternalError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response already started, nothing we can do
		_ = err
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
