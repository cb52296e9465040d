package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

// BootstrapStorage is the persistence surface first-run seeding needs.
type BootstrapStorage interface {
	CountTenants(ctx context.Context) (int, error)
	CreateTenant(ctx context.Context, name string) (*storage.Tenant, error)
	CreateActor(ctx context.Context, a *storage.Actor) (*storage.Actor, error)
	CreateCredential(ctx context.Context, c *storage.Credential, rawSecret string) (*storage.Credential, error)
}

// BootstrapResult reports what first-run seeding created. RawSecret is the
// owner credential's secret; it is surfaced exactly once, here, and cannot
// be recovered afterwards because only its hash is stored.
type BootstrapResult struct {
	Tenant    *storage.Tenant
	Owner     *storage.Actor
	RawSecret string
}

// EnsureBootstrap seeds an empty database with one tenant, one owner actor
// and one owner credential. On a database that already has tenants it does
// nothing and returns nil.
func EnsureBootstrap(ctx context.Context, s BootstrapStorage, tenantName, ownerEmail string, logger *slog.Logger) (*BootstrapResult, error) {
	count, err := s.CountTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap check: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	tenant, err := s.CreateTenant(ctx, tenantName)
	if err != nil {
		return nil, fmt.Errorf("bootstrap tenant: %w", err)
	}

	owner, err := s.CreateActor(ctx, &storage.Actor{
		TenantID: tenant.ID,
		Name:     "Owner",
		Email:    ownerEmail,
		Role:     perm.RoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap owner: %w", err)
	}

	rawSecret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("bootstrap secret: %w", err)
	}

	if _, err := s.CreateCredential(ctx, &storage.Credential{
		TenantID: tenant.ID,
		ActorID:  owner.ID,
		Name:     "bootstrap",
	}, rawSecret); err != nil {
		return nil, fmt.Errorf("bootstrap credential: %w", err)
	}

	logger.Info("bootstrapped empty database",
		"tenant_id", tenant.ID, "owner_id", owner.ID, "owner_email", owner.Email)

	return &BootstrapResult{Tenant: tenant, Owner: owner, RawSecret: rawSecret}, nil
}

// generateSecret produces a 256-bit random secret, hex encoded.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
