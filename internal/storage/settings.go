package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Setting is one tenant-scoped configuration key.
type Setting struct {
	TenantID  string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// GetSetting returns one configuration value.
func (s *SQLiteStorage) GetSetting(ctx context.Context, tenantID, key string) (*Setting, error) {
	var st Setting
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT tenant_id, key, value, updated_at FROM settings WHERE tenant_id = ? AND key = ?",
		tenantID, key).Scan(&st.TenantID, &st.Key, &st.Value, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	st.UpdatedAt = fromMillis(updatedAt)
	return &st, nil
}

// SetSetting creates or replaces a configuration value.
func (s *SQLiteStorage) SetSetting(ctx context.Context, tenantID, key, value string) (*Setting, error) {
	if key == "" {
		return nil, errors.New("key required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (tenant_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(tenant_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		tenantID, key, value, millis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to set setting: %w", err)
	}
	return &Setting{TenantID: tenantID, Key: key, Value: value, UpdatedAt: now}, nil
}

// ListSettings returns all configuration values for a tenant, ordered by key.
func (s *SQLiteStorage) ListSettings(ctx context.Context, tenantID string) ([]*Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tenant_id, key, value, updated_at FROM settings WHERE tenant_id = ? ORDER BY key",
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*Setting
	for rows.Next() {
		var st Setting
		var updatedAt int64
		if err := rows.Scan(&st.TenantID, &st.Key, &st.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		st.UpdatedAt = fromMillis(updatedAt)
		out = append(out, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return out, nil
}

// DeleteSetting removes a configuration key. Missing keys are not an error.
func (s *SQLiteStorage) DeleteSetting(ctx context.Context, tenantID, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM settings WHERE tenant_id = ? AND key = ?", tenantID, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}
