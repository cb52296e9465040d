package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
)

// CreateTenant creates a new tenant workspace.
func (s *SQLiteStorage) CreateTenant(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{
		ID:        ids.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)",
		t.ID, t.Name, millis(t.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return t, nil
}

// GetTenant retrieves a tenant by ID. Returns ErrNotFound if it does not
// exist.
func (s *SQLiteStorage) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM tenants WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

// CountTenants returns the number of tenants. Used by bootstrap to decide
// whether first-run provisioning is needed.
func (s *SQLiteStorage) CountTenants(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tenants").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return count, nil
}
