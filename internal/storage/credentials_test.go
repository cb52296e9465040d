package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maplecrm/records-api/internal/perm"
)

// newTestActor creates an actor for credential tests.
func newTestActor(t *testing.T, s *SQLiteStorage, tenantID string) *Actor {
	t.Helper()
	a, err := s.CreateActor(context.Background(), &Actor{
		TenantID: tenantID,
		Name:     "Bot",
		Email:    "bot@acme.test",
		Role:     perm.RoleOperator,
	})
	if err != nil {
		t.Fatalf("failed to create actor: %v", err)
	}
	return a
}

// TestCredentialLookupByHash verifies that a credential is found by the
// hash of its raw secret, and never by the raw secret itself.
func TestCredentialLookupByHash(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)
	actor := newTestActor(t, s, tenant.ID)

	c, err := s.CreateCredential(ctx, &Credential{
		TenantID: tenant.ID,
		ActorID:  actor.ID,
		Name:     "integration",
	}, "raw-secret-1")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if c.SecretHash == "raw-secret-1" {
		t.Fatal("secret stored unhashed")
	}

	got, err := s.GetCredentialByHash(ctx, HashSecret("raw-secret-1"))
	if err != nil {
		t.Fatalf("GetCredentialByHash failed: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("expected credential %s, got %s", c.ID, got.ID)
	}

	if _, err := s.GetCredentialByHash(ctx, "raw-secret-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for raw secret lookup, got %v", err)
	}
}

// TestCredentialPermissionsNilVsEmpty verifies that a credential with no
// permission map round-trips as nil, while an explicit empty map stays an
// empty map. The two are semantically different: nil falls back to the
// actor's role, an empty map grants nothing.
func TestCredentialPermissionsNilVsEmpty(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)
	actor := newTestActor(t, s, tenant.ID)

	plain, err := s.CreateCredential(ctx, &Credential{
		TenantID: tenant.ID, ActorID: actor.ID, Name: "role-based",
	}, "secret-nil")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	scoped, err := s.CreateCredential(ctx, &Credential{
		TenantID: tenant.ID, ActorID: actor.ID, Name: "locked-down",
		Permissions: perm.Overrides{},
	}, "secret-empty")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	got, err := s.GetCredential(ctx, tenant.ID, plain.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Permissions != nil {
		t.Errorf("expected nil permissions, got %v", got.Permissions)
	}

	got, err = s.GetCredential(ctx, tenant.ID, scoped.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Permissions == nil {
		t.Error("expected non-nil empty permissions map")
	}
	if len(got.Permissions) != 0 {
		t.Errorf("expected empty permissions map, got %v", got.Permissions)
	}
}

// TestRevokeCredential verifies that revocation clears the active flag but
// keeps the row listed.
func TestRevokeCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)
	actor := newTestActor(t, s, tenant.ID)

	c, err := s.CreateCredential(ctx, &Credential{
		TenantID: tenant.ID, ActorID: actor.ID, Name: "to-revoke",
	}, "secret-revoke")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	if err := s.RevokeCredential(ctx, tenant.ID, c.ID); err != nil {
		t.Fatalf("RevokeCredential failed: %v", err)
	}

	got, err := s.GetCredential(ctx, tenant.ID, c.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Active {
		t.Error("expected credential inactive after revoke")
	}

	list, err := s.ListCredentials(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected revoked credential still listed, got %d rows", len(list))
	}

	if err := s.RevokeCredential(ctx, tenant.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing credential, got %v", err)
	}
}

// TestTouchCredential verifies the last-used timestamp update.
func TestTouchCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)
	actor := newTestActor(t, s, tenant.ID)

	c, err := s.CreateCredential(ctx, &Credential{
		TenantID: tenant.ID, ActorID: actor.ID, Name: "touched",
	}, "secret-touch")
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if c.LastUsedAt != nil {
		t.Error("expected no last-used timestamp on creation")
	}

	usedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := s.TouchCredential(ctx, c.ID, usedAt); err != nil {
		t.Fatalf("TouchCredential failed: %v", err)
	}

	got, err := s.GetCredential(ctx, tenant.ID, c.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.LastUsedAt == nil || !got.LastUsedAt.Equal(usedAt) {
		t.Errorf("expected last-used %v, got %v", usedAt, got.LastUsedAt)
	}
}
