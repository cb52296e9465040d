package api

import (
	"net/http"

	"github.com/maplecrm/records-api/internal/auth"
)

type summaryReport struct {
	Leads             int64 `json:"leads"`
	Contacts          int64 `json:"contacts"`
	OpenConversations int64 `json:"open_conversations"`
	OpenTasks         int64 `json:"open_tasks"`
}

// handleReportSummary returns per-tenant record counts.
// GET /v1/reports/summary
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID
	ctx := r.Context()

	var rep summaryReport
	var err error

	if rep.Leads, err = s.store.CountLeads(ctx, tenantID); err != nil {
		s.writeStorageError(w, err, "report")
		return
	}
	if rep.Contacts, err = s.store.CountContacts(ctx, tenantID); err != nil {
		s.writeStorageError(w, err, "report")
		return
	}
	if rep.OpenConversations, err = s.store.CountOpenConversations(ctx, tenantID); err != nil {
		s.writeStorageError(w, err, "report")
		return
	}
	if rep.OpenTasks, err = s.store.CountOpenTasks(ctx, tenantID); err != nil {
		s.writeStorageError(w, err, "report")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
