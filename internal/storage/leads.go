package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
	"github.com/maplecrm/records-api/internal/query"
)

const leadColumns = "id, tenant_id, name, email, phone, status, source, owner_id, created_at, updated_at"

// CreateLead inserts a lead record.
func (s *SQLiteStorage) CreateLead(ctx context.Context, l *Lead) (*Lead, error) {
	if l.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if l.Name == "" {
		return nil, errors.New("name required")
	}
	if l.Status == "" {
		l.Status = "new"
	}

	now := time.Now().UTC()
	l.ID = ids.New()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leads (id, tenant_id, name, email, phone, status, source, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.TenantID, l.Name, l.Email, l.Phone, l.Status, l.Source, l.OwnerID,
		millis(l.CreatedAt), millis(l.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return l, nil
}

// GetLead retrieves a lead within a tenant. Returns ErrNotFound for leads
// in other tenants.
func (s *SQLiteStorage) GetLead(ctx context.Context, tenantID, id string) (*Lead, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanLead(row)
}

// LeadUpdate holds the patchable lead fields.
type LeadUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Status  *string
	Source  *string
	OwnerID *string
}

// UpdateLead applies a partial update.
func (s *SQLiteStorage) UpdateLead(ctx context.Context, tenantID, id string, upd LeadUpdate) (*Lead, error) {
	l, err := s.GetLead(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		l.Name = *upd.Name
	}
	if upd.Email != nil {
		l.Email = *upd.Email
	}
	if upd.Phone != nil {
		l.Phone = *upd.Phone
	}
	if upd.Status != nil {
		l.Status = *upd.Status
	}
	if upd.Source != nil {
		l.Source = *upd.Source
	}
	if upd.OwnerID != nil {
		l.OwnerID = *upd.OwnerID
	}
	l.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE leads SET name = ?, email = ?, phone = ?, status = ?, source = ?, owner_id = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
		l.Name, l.Email, l.Phone, l.Status, l.Source, l.OwnerID, millis(l.UpdatedAt), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return l, nil
}

// FetchLeadPage is the pagination source for leads: rows ordered
// (created_at DESC, id DESC), restricted to the indexed filter, seeking
// past the cursor, capped at fetchLimit.
func (s *SQLiteStorage) FetchLeadPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*Lead, error) {
	q := "SELECT " + leadColumns + " FROM leads WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(LeadsCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	leads := make([]*Lead, 0, fetchLimit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}
	return leads, nil
}

// CountLeads returns the number of leads in a tenant, for reporting.
func (s *SQLiteStorage) CountLeads(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads WHERE tenant_id = ?", tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

func scanLead(row rowScanner) (*Lead, error) {
	var l Lead
	var createdAt, updatedAt int64
	err := row.Scan(&l.ID, &l.TenantID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Source,
		&l.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	l.CreatedAt = fromMillis(createdAt)
	l.UpdatedAt = fromMillis(updatedAt)
	return &l, nil
}
