// Package audit records mutations to the append-only audit log.
package audit

import (
	"context"
	"log/slog"

	"github.com/maplecrm/records-api/internal/storage"
)

// Store is the persistence surface the recorder needs.
type Store interface {
	AppendAudit(ctx context.Context, e *storage.AuditEntry) (*storage.AuditEntry, error)
}

// Recorder appends audit entries for request mutations. Recording is best
// effort: a failed append is logged and never fails the mutation that
// triggered it.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry. action is a dotted verb like "lead.create";
// entityType and entityID identify the affected record; detail is an
// optional human-readable summary.
func (r *Recorder) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, detail string) {
	_, err := r.store.AppendAudit(ctx, &storage.AuditEntry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
	if err != nil {
		r.logger.Error("failed to append audit entry",
			"tenant_id", tenantID, "action", action, "entity_id", entityID, "error", err)
	}
}
