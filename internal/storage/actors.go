package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
	"github.com/maplecrm/records-api/internal/perm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const actorColumns = "id, tenant_id, name, email, role, password_hash, overrides, active, created_at, updated_at"

// CreateActor provisions a team member. Returns ErrDuplicate if the email
// is already used within the tenant.
func (s *SQLiteStorage) CreateActor(ctx context.Context, a *Actor) (*Actor, error) {
	if a.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if a.Email == "" {
		return nil, errors.New("email required")
	}

	now := time.Now().UTC()
	a.ID = ids.New()
	a.Active = true
	a.CreatedAt = now
	a.UpdatedAt = now

	overridesJSON, err := marshalOverrides(a.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overrides: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO actors (id, tenant_id, name, email, role, password_hash, overrides, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.TenantID, a.Name, strings.ToLower(a.Email), string(a.Role), a.PasswordHash,
		overridesJSON, a.Active, millis(a.CreatedAt), millis(a.UpdatedAt))
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create actor: %w", err)
	}
	return a, nil
}

// GetActor retrieves an actor by ID within a tenant. Returns ErrNotFound
// for actors in other tenants, so callers cannot probe across tenants.
func (s *SQLiteStorage) GetActor(ctx context.Context, tenantID, id string) (*Actor, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+actorColumns+" FROM actors WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanActor(row)
}

// GetActorByID retrieves an actor without tenant scoping. Used only by
// credential validation, which derives the tenant from the actor.
func (s *SQLiteStorage) GetActorByID(ctx context.Context, id string) (*Actor, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+actorColumns+" FROM actors WHERE id = ?", id)
	return scanActor(row)
}

// ListActors returns all actors in a tenant, newest first. Team rosters are
// small; this list is not cursor-paginated.
func (s *SQLiteStorage) ListActors(ctx context.Context, tenantID string) ([]*Actor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+actorColumns+" FROM actors WHERE tenant_id = ? ORDER BY created_at DESC, id DESC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	actors := make([]*Actor, 0)
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actors: %w", err)
	}
	return actors, nil
}

// ActorUpdate holds the mutable actor fields. Nil pointers leave the field
// unchanged; a non-nil empty Overrides map clears all overrides.
type ActorUpdate struct {
	Name      *string
	Role      *perm.Role
	Overrides *perm.Overrides
	Active    *bool
}

// UpdateActor applies a partial update. Returns ErrNotFound when the actor
// does not exist in the tenant.
func (s *SQLiteStorage) UpdateActor(ctx context.Context, tenantID, id string, upd ActorUpdate) (*Actor, error) {
	a, err := s.GetActor(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Role != nil {
		a.Role = *upd.Role
	}
	if upd.Overrides != nil {
		a.Overrides = *upd.Overrides
	}
	if upd.Active != nil {
		a.Active = *upd.Active
	}
	a.UpdatedAt = time.Now().UTC()

	overridesJSON, err := marshalOverrides(a.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overrides: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE actors SET name = ?, role = ?, overrides = ?, active = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
		a.Name, string(a.Role), overridesJSON, a.Active, millis(a.UpdatedAt), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}
	return a, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(row rowScanner) (*Actor, error) {
	var a Actor
	var role string
	var overridesJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.Email, &role, &a.PasswordHash,
		&overridesJSON, &a.Active, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan actor: %w", err)
	}

	a.Role = perm.Role(role)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	if overridesJSON.Valid && overridesJSON.String != "" {
		if err := json.Unmarshal([]byte(overridesJSON.String), &a.Overrides); err != nil {
			return nil, fmt.Errorf("failed to unmarshal overrides: %w", err)
		}
	}
	return &a, nil
}

// marshalOverrides encodes a permission override map, storing NULL for an
// absent map so "no overrides" and "explicitly empty" stay distinct.
func marshalOverrides(o perm.Overrides) (any, error) {
	if o == nil {
		return nil, nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// isConstraintErr reports whether err is a sqlite UNIQUE/constraint
// violation. The extended error code for UNIQUE constraint is 2067.
func isConstraintErr(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
