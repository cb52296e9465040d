// Package auth handles credential validation and permission resolution.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

// Errors for authentication and authorization failures. Validation failures
// deliberately collapse into ErrNotAuthenticated so responses do not reveal
// whether a secret exists, is revoked, or is expired.
var (
	ErrNotAuthenticated = errors.New("auth: not authenticated")
	ErrForbidden        = errors.New("auth: permission denied")
)

// Identity is the result of a successful validation: the acting team
// member, the credential they presented, and their fully resolved
// permissions.
type Identity struct {
	Actor      *storage.Actor
	Credential *storage.Credential
	Effective  perm.Effective
}

// Storage is the persistence surface the validator needs.
type Storage interface {
	GetCredentialByHash(ctx context.Context, secretHash string) (*storage.Credential, error)
	GetActorByID(ctx context.Context, id string) (*storage.Actor, error)
	TouchCredential(ctx context.Context, id string, usedAt time.Time) error
}

// Validator resolves bearer secrets into identities.
type Validator struct {
	storage  Storage
	resolver *perm.Resolver
	logger   *slog.Logger
	// now is swappable for expiry tests.
	now func() time.Time
}

// NewValidator creates a Validator over the given storage and permission
// tables.
func NewValidator(s Storage, r *perm.Resolver, logger *slog.Logger) *Validator {
	return &Validator{
		storage:  s,
		resolver: r,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate resolves a raw bearer secret into an Identity. The raw secret is
// hashed before lookup and never stored or logged. Returns
// ErrNotAuthenticated for unknown, revoked, or expired credentials and for
// deactivated actors.
func (v *Validator) Validate(ctx context.Context, rawSecret string) (*Identity, error) {
	if rawSecret == "" {
		return nil, ErrNotAuthenticated
	}

	cred, err := v.storage.GetCredentialByHash(ctx, storage.HashSecret(rawSecret))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	now := v.now()
	if !cred.Active {
		return nil, ErrNotAuthenticated
	}
	if cred.ExpiresAt != nil && !cred.ExpiresAt.After(now) {
		return nil, ErrNotAuthenticated
	}

	actor, err := v.storage.GetActorByID(ctx, cred.ActorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("actor lookup: %w", err)
	}
	if !actor.Active {
		return nil, ErrNotAuthenticated
	}

	eff, err := v.resolver.Resolve(actor.Role, actor.Overrides, cred.Permissions)
	if err != nil {
		return nil, fmt.Errorf("permission resolution: %w", err)
	}

	// Best effort: a failed touch must not fail the request.
	if err := v.storage.TouchCredential(ctx, cred.ID, now); err != nil {
		v.logger.Warn("failed to update credential last-used timestamp",
			"credential_id", cred.ID, "error", err)
	}

	return &Identity{Actor: actor, Credential: cred, Effective: eff}, nil
}

// Tables exposes the permission tables for request validation.
func (v *Validator) Tables() *perm.Tables {
	return v.resolver.Tables()
}

// Require returns nil when the identity meets the required level in the
// given category, ErrForbidden otherwise.
func (v *Validator) Require(id *Identity, cat perm.Category, required perm.Level) error {
	ok, err := v.resolver.Check(id.Effective, cat, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
