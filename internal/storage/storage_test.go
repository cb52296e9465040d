package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/maplecrm/records-api/internal/perm"
)

// newTestStorage opens an in-memory database for a test.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestTenant creates a tenant for a test.
func newTestTenant(t *testing.T, s *SQLiteStorage) *Tenant {
	t.Helper()
	tenant, err := s.CreateTenant(context.Background(), "acme")
	if err != nil {
		t.Fatalf("failed to create tenant: %v", err)
	}
	return tenant
}

// TestCreateTenant verifies tenant creation and lookup.
func TestCreateTenant(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tenant, err := s.CreateTenant(ctx, "acme")
	if err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}
	if tenant.ID == "" {
		t.Error("expected non-empty tenant ID")
	}

	got, err := s.GetTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("GetTenant failed: %v", err)
	}
	if got.Name != "acme" {
		t.Errorf("expected name acme, got %q", got.Name)
	}

	count, err := s.CountTenants(ctx)
	if err != nil {
		t.Fatalf("CountTenants failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 tenant, got %d", count)
	}
}

// TestCreateActorDuplicateEmail verifies that the tenant-scoped email
// uniqueness constraint surfaces as ErrDuplicate, and that the same email
// is allowed in a different tenant.
func TestCreateActorDuplicateEmail(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)

	_, err := s.CreateActor(ctx, &Actor{TenantID: tenant.ID, Name: "Ann", Email: "ann@acme.test", Role: perm.RoleAgent})
	if err != nil {
		t.Fatalf("CreateActor failed: %v", err)
	}

	_, err = s.CreateActor(ctx, &Actor{TenantID: tenant.ID, Name: "Ann 2", Email: "ANN@acme.test", Role: perm.RoleAgent})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for same email in tenant, got %v", err)
	}

	other, err := s.CreateTenant(ctx, "globex")
	if err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}
	_, err = s.CreateActor(ctx, &Actor{TenantID: other.ID, Name: "Ann", Email: "ann@acme.test", Role: perm.RoleAgent})
	if err != nil {
		t.Errorf("expected same email allowed in another tenant, got %v", err)
	}
}

// TestGetActorTenantScoped verifies that lookups never cross tenants.
func TestGetActorTenantScoped(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)
	other, err := s.CreateTenant(ctx, "globex")
	if err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}

	a, err := s.CreateActor(ctx, &Actor{TenantID: tenant.ID, Name: "Bob", Email: "bob@acme.test", Role: perm.RoleManager})
	if err != nil {
		t.Fatalf("CreateActor failed: %v", err)
	}

	if _, err := s.GetActor(ctx, other.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across tenants, got %v", err)
	}
	if _, err := s.GetActor(ctx, tenant.ID, a.ID); err != nil {
		t.Errorf("expected actor found in own tenant, got %v", err)
	}
}

// TestUpdateActorOverrides verifies partial updates, including clearing
// overrides with an explicit empty map versus leaving them untouched.
func TestUpdateActorOverrides(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)

	a, err := s.CreateActor(ctx, &Actor{
		TenantID:  tenant.ID,
		Name:      "Cam",
		Email:     "cam@acme.test",
		Role:      perm.RoleAgent,
		Overrides: perm.Overrides{perm.CategoryRecords: perm.LevelFull},
	})
	if err != nil {
		t.Fatalf("CreateActor failed: %v", err)
	}

	name := "Cameron"
	got, err := s.UpdateActor(ctx, tenant.ID, a.ID, ActorUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateActor failed: %v", err)
	}
	if got.Name != "Cameron" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if got.Overrides[perm.CategoryRecords] != perm.LevelFull {
		t.Errorf("expected overrides untouched, got %v", got.Overrides)
	}

	empty := perm.Overrides{}
	got, err = s.UpdateActor(ctx, tenant.ID, a.ID, ActorUpdate{Overrides: &empty})
	if err != nil {
		t.Fatalf("UpdateActor failed: %v", err)
	}
	if len(got.Overrides) != 0 {
		t.Errorf("expected overrides cleared, got %v", got.Overrides)
	}
}

// TestDeactivateActor verifies that deactivation is an update, not a
// delete: the row stays readable.
func TestDeactivateActor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)

	a, err := s.CreateActor(ctx, &Actor{TenantID: tenant.ID, Name: "Dee", Email: "dee@acme.test", Role: perm.RoleOperator})
	if err != nil {
		t.Fatalf("CreateActor failed: %v", err)
	}

	inactive := false
	if _, err := s.UpdateActor(ctx, tenant.ID, a.ID, ActorUpdate{Active: &inactive}); err != nil {
		t.Fatalf("UpdateActor failed: %v", err)
	}

	got, err := s.GetActor(ctx, tenant.ID, a.ID)
	if err != nil {
		t.Fatalf("GetActor failed: %v", err)
	}
	if got.Active {
		t.Error("expected actor inactive")
	}
}

// TestSettingsUpsert verifies set, overwrite, list ordering and delete.
func TestSettingsUpsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	tenant := newTestTenant(t, s)

	if _, err := s.SetSetting(ctx, tenant.ID, "timezone", "UTC"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := s.SetSetting(ctx, tenant.ID, "timezone", "Europe/Berlin"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	if _, err := s.SetSetting(ctx, tenant.ID, "currency", "EUR"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	got, err := s.GetSetting(ctx, tenant.ID, "timezone")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if got.Value != "Europe/Berlin" {
		t.Errorf("expected overwritten value, got %q", got.Value)
	}

	all, err := s.ListSettings(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("ListSettings failed: %v", err)
	}
	if len(all) != 2 || all[0].Key != "currency" || all[1].Key != "timezone" {
		t.Errorf("expected [currency timezone], got %v", all)
	}

	if err := s.DeleteSetting(ctx, tenant.ID, "currency"); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	if _, err := s.GetSetting(ctx, tenant.ID, "currency"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
