package auth

import (
	"context"
	"testing"

	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

// TestEnsureBootstrapSeedsEmptyDatabase verifies first-run seeding creates
// tenant, owner and a working credential, and that the secret validates.
func TestEnsureBootstrapSeedsEmptyDatabase(t *testing.T) {
	s, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	res, err := EnsureBootstrap(ctx, s, "acme", "owner@acme.test", testLogger())
	if err != nil {
		t.Fatalf("EnsureBootstrap failed: %v", err)
	}
	if res == nil {
		t.Fatal("expected bootstrap result for empty database")
	}
	if res.Owner.Role != perm.RoleOwner {
		t.Errorf("expected owner role, got %v", res.Owner.Role)
	}
	if res.RawSecret == "" {
		t.Fatal("expected raw secret in bootstrap result")
	}

	v := NewValidator(s, perm.NewResolver(perm.BuiltinTables()), testLogger())
	id, err := v.Validate(ctx, res.RawSecret)
	if err != nil {
		t.Fatalf("bootstrap secret did not validate: %v", err)
	}
	if id.Actor.ID != res.Owner.ID {
		t.Errorf("expected identity of bootstrap owner, got %s", id.Actor.ID)
	}
	if id.Effective[perm.CategoryTeam] != perm.LevelManage {
		t.Errorf("expected owner team manage, got %v", id.Effective[perm.CategoryTeam])
	}
}

// TestEnsureBootstrapIdempotent verifies seeding is a no-op on a database
// that already has tenants.
func TestEnsureBootstrapIdempotent(t *testing.T) {
	s, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if _, err := EnsureBootstrap(ctx, s, "acme", "owner@acme.test", testLogger()); err != nil {
		t.Fatalf("first EnsureBootstrap failed: %v", err)
	}

	res, err := EnsureBootstrap(ctx, s, "acme", "owner@acme.test", testLogger())
	if err != nil {
		t.Fatalf("second EnsureBootstrap failed: %v", err)
	}
	if res != nil {
		t.Error("expected no-op on populated database")
	}

	count, err := s.CountTenants(ctx)
	if err != nil {
		t.Fatalf("CountTenants failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 tenant, got %d", count)
	}
}
