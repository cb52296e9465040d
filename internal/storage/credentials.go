package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
	"github.com/maplecrm/records-api/internal/perm"
)

const credentialColumns = "id, tenant_id, actor_id, name, secret_hash, permissions, active, expires_at, last_used_at, created_at"

// CreateCredential issues a credential for an actor, storing only the
// SHA-256 hash of the raw secret. Returns ErrDuplicate if the hash
// collides with an existing credential.
func (s *SQLiteStorage) CreateCredential(ctx context.Context, c *Credential, rawSecret string) (*Credential, error) {
	if c.TenantID == "" || c.ActorID == "" {
		return nil, errors.New("tenant_id and actor_id required")
	}
	if rawSecret == "" {
		return nil, errors.New("secret required")
	}

	c.ID = ids.New()
	c.SecretHash = HashSecret(rawSecret)
	c.Active = true
	c.CreatedAt = time.Now().UTC()

	permissionsJSON, err := marshalOverrides(c.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO credentials (id, tenant_id, actor_id, name, secret_hash, permissions, active, expires_at, last_used_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)",
		c.ID, c.TenantID, c.ActorID, c.Name, c.SecretHash, permissionsJSON, c.Active,
		nullMillis(c.ExpiresAt), millis(c.CreatedAt))
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return c, nil
}

// GetCredentialByHash looks a credential up by its secret hash. Returns
// ErrNotFound when no row matches; active/expiry checks belong to the
// validator, which needs to distinguish the reasons.
func (s *SQLiteStorage) GetCredentialByHash(ctx context.Context, secretHash string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE secret_hash = ?", secretHash)
	return scanCredential(row)
}

// GetCredential retrieves a credential by ID within a tenant.
func (s *SQLiteStorage) GetCredential(ctx context.Context, tenantID, id string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanCredential(row)
}

// ListCredentials returns all credentials in a tenant, newest first,
// including revoked ones (they remain visible for audit continuity).
func (s *SQLiteStorage) ListCredentials(ctx context.Context, tenantID string) ([]*Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE tenant_id = ? ORDER BY created_at DESC, id DESC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	credentials := make([]*Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}
	return credentials, nil
}

// RevokeCredential clears the active flag. The row is kept; a revoked
// credential fails validation but its issuance history stays auditable.
// Returns ErrNotFound when no such credential exists in the tenant.
func (s *SQLiteStorage) RevokeCredential(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE credentials SET active = 0 WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchCredential refreshes the last-used timestamp. Called on every
// successful validation; the caller treats failures as non-fatal.
func (s *SQLiteStorage) TouchCredential(ctx context.Context, id string, usedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE credentials SET last_used_at = ? WHERE id = ?", millis(usedAt), id)
	if err != nil {
		return fmt.Errorf("failed to touch credential: %w", err)
	}
	return nil
}

func scanCredential(row rowScanner) (*Credential, error) {
	var c Credential
	var permissionsJSON sql.NullString
	var expiresAt, lastUsedAt sql.NullInt64
	var createdAt int64

	err := row.Scan(&c.ID, &c.TenantID, &c.ActorID, &c.Name, &c.SecretHash,
		&permissionsJSON, &c.Active, &expiresAt, &lastUsedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}

	c.ExpiresAt = timePtr(expiresAt)
	c.LastUsedAt = timePtr(lastUsedAt)
	c.CreatedAt = fromMillis(createdAt)
	if permissionsJSON.Valid && permissionsJSON.String != "" {
		if err := json.Unmarshal([]byte(permissionsJSON.String), &c.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
		// A stored "{}" must stay distinct from NULL: it means a
		// complete replacement map granting nothing.
		if c.Permissions == nil {
			c.Permissions = perm.Overrides{}
		}
	}
	return &c, nil
}
