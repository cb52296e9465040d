package api

import (
	"context"
	"net/http"
	"time"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

type auditDTO struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAuditDTO(e *storage.AuditEntry) auditDTO {
	return auditDTO{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Detail:     e.Detail,
		CreatedAt:  e.CreatedAt,
	}
}

// handleListAudit serves a cursor page of the audit log.
// GET /v1/audit?actor_id=&action=&entity_type=&limit=&cursor=
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID

	servePage(s, w, r, storage.AuditCollection, []string{"actor_id", "action", "entity_type"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.AuditEntry, error) {
			return s.store.FetchAuditPage(ctx, tenantID, indexed, after, fetchLimit)
		}, toAuditDTO)
}
