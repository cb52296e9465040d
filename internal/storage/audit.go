package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
	"github.com/maplecrm/records-api/internal/query"
)

const auditColumns = "id, tenant_id, actor_id, action, entity_type, entity_id, detail, created_at"

// AppendAudit inserts one audit entry. The audit log is append-only; there
// is no update or delete path.
func (s *SQLiteStorage) AppendAudit(ctx context.Context, e *AuditEntry) (*AuditEntry, error) {
	if e.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if e.Action == "" {
		return nil, errors.New("action required")
	}

	e.ID = ids.New()
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_log (id, tenant_id, actor_id, action, entity_type, entity_id, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.TenantID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.Detail, millis(e.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return e, nil
}

// FetchAuditPage is the pagination source for the audit log.
func (s *SQLiteStorage) FetchAuditPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*AuditEntry, error) {
	q := "SELECT " + auditColumns + " FROM audit_log WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(AuditCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*AuditEntry, 0, fetchLimit)
	for rows.Next() {
		var e AuditEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.EntityType,
			&e.EntityID, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}
