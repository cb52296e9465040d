package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maplecrm/records-api/internal/audit"
	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
	"github.com/maplecrm/records-api/internal/testutil/mockstore"
)

// testEnv wires a full router over an in-memory database with one actor and
// one credential per role.
type testEnv struct {
	router  http.Handler
	store   *storage.SQLiteStorage
	tenant  *storage.Tenant
	actors  map[perm.Role]*storage.Actor
	secrets map[perm.Role]string
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	tenant, err := store.CreateTenant(ctx, "acme")
	if err != nil {
		t.Fatalf("failed to create tenant: %v", err)
	}

	env := &testEnv{
		store:   store,
		tenant:  tenant,
		actors:  make(map[perm.Role]*storage.Actor),
		secrets: make(map[perm.Role]string),
	}

	for _, role := range []perm.Role{perm.RoleOwner, perm.RoleManager, perm.RoleOperator} {
		actor, err := store.CreateActor(ctx, &storage.Actor{
			TenantID: tenant.ID,
			Name:     string(role) + " user",
			Email:    string(role) + "@acme.test",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("failed to create %s actor: %v", role, err)
		}

		secret := "test-secret-" + string(role)
		if _, err := store.CreateCredential(ctx, &storage.Credential{
			TenantID: tenant.ID,
			ActorID:  actor.ID,
			Name:     string(role) + " key",
		}, secret); err != nil {
			t.Fatalf("failed to create %s credential: %v", role, err)
		}

		env.actors[role] = actor
		env.secrets[role] = secret
	}

	logger := testLogger()
	validator := auth.NewValidator(store, perm.NewResolver(perm.BuiltinTables()), logger)
	server := NewServer(store, validator, audit.NewRecorder(store, logger), logger)
	env.router = server.Router()
	return env
}

// do performs one request against the test router. An empty secret sends no
// Authorization header.
func (e *testEnv) do(t *testing.T, method, path, secret string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		buf = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// wantError asserts an error response with the given status and code.
func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, status, rec.Body.String())
	}
	var apiErr APIError
	decodeBody(t, rec, &apiErr)
	if apiErr.Error != code {
		t.Errorf("error code = %q, want %q", apiErr.Error, code)
	}
	if apiErr.Message == "" {
		t.Error("error message is empty")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestReadyStorageDown verifies readiness turns 503 when the database ping
// fails.
func TestReadyStorageDown(t *testing.T) {
	store := &mockstore.MockStore{
		PingFunc: func() error { return errors.New("database is locked") },
	}
	logger := testLogger()
	validator := auth.NewValidator(store, perm.NewResolver(perm.BuiltinTables()), logger)
	server := NewServer(store, validator, audit.NewRecorder(store, logger), logger)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

// TestAuthRequired verifies every /v1 route rejects requests without a
// credential.
func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/leads"},
		{http.MethodPost, "/v1/leads"},
		{http.MethodGet, "/v1/contacts"},
		{http.MethodGet, "/v1/conversations"},
		{http.MethodGet, "/v1/tasks"},
		{http.MethodGet, "/v1/reports/summary"},
		{http.MethodGet, "/v1/team/members"},
		{http.MethodGet, "/v1/credentials"},
		{http.MethodGet, "/v1/settings"},
		{http.MethodGet, "/v1/audit"},
	}
	for _, rt := range routes {
		rec := env.do(t, rt.method, rt.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without credential: status = %d, want 401", rt.method, rt.path, rec.Code)
		}
	}

	// An unknown secret is indistinguishable from no secret.
	rec := env.do(t, http.MethodGet, "/v1/leads", "no-such-secret", nil)
	wantError(t, rec, http.StatusUnauthorized, ErrCodeNotAuthenticated)
}

// TestPermissionGating verifies role defaults gate routes: operators have no
// team, reporting or audit access, managers read but cannot manage the
// team, owners can do everything.
func TestPermissionGating(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		role       perm.Role
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{
			name:       "operator cannot list team",
			role:       perm.RoleOperator,
			method:     http.MethodGet,
			path:       "/v1/team/members",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "operator cannot read reports",
			role:       perm.RoleOperator,
			method:     http.MethodGet,
			path:       "/v1/reports/summary",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "operator cannot read audit",
			role:       perm.RoleOperator,
			method:     http.MethodGet,
			path:       "/v1/audit",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "operator can list leads",
			role:       perm.RoleOperator,
			method:     http.MethodGet,
			path:       "/v1/leads",
			wantStatus: http.StatusOK,
		},
		{
			name:       "manager can list team",
			role:       perm.RoleManager,
			method:     http.MethodGet,
			path:       "/v1/team/members",
			wantStatus: http.StatusOK,
		},
		{
			name:       "manager cannot add team members",
			role:       perm.RoleManager,
			method:     http.MethodPost,
			path:       "/v1/team/members",
			body:       map[string]string{"email": "x@acme.test", "role": "agent"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "manager cannot write settings",
			role:       perm.RoleManager,
			method:     http.MethodPut,
			path:       "/v1/settings/theme",
			body:       map[string]string{"value": "dark"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "manager can read reports",
			role:       perm.RoleManager,
			method:     http.MethodGet,
			path:       "/v1/reports/summary",
			wantStatus: http.StatusOK,
		},
		{
			name:       "owner can read audit",
			role:       perm.RoleOwner,
			method:     http.MethodGet,
			path:       "/v1/audit",
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, env.secrets[tt.role], tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusForbidden {
				var apiErr APIError
				decodeBody(t, rec, &apiErr)
				if apiErr.Error != ErrCodeForbidden {
					t.Errorf("error code = %q, want %q", apiErr.Error, ErrCodeForbidden)
				}
			}
		})
	}
}

// TestListLeadsStorageError verifies storage failures surface as opaque 500s.
func TestListLeadsStorageError(t *testing.T) {
	actor := &storage.Actor{
		ID:       "01TESTACTOR0000000000000AA",
		TenantID: "01TESTTENANT000000000000AA",
		Role:     perm.RoleOwner,
		Active:   true,
	}
	cred := &storage.Credential{
		ID:         "01TESTCRED00000000000000AA",
		TenantID:   actor.TenantID,
		ActorID:    actor.ID,
		SecretHash: storage.HashSecret("mock-secret"),
		Active:     true,
	}

	store := &mockstore.MockStore{
		GetCredentialByHashFunc: func(ctx context.Context, secretHash string) (*storage.Credential, error) {
			if secretHash != cred.SecretHash {
				return nil, storage.ErrNotFound
			}
			return cred, nil
		},
		GetActorByIDFunc: func(ctx context.Context, id string) (*storage.Actor, error) {
			return actor, nil
		},
		FetchLeadPageFunc: func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Lead, error) {
			return nil, errors.New("disk I/O error")
		},
	}

	logger := testLogger()
	validator := auth.NewValidator(store, perm.NewResolver(perm.BuiltinTables()), logger)
	server := NewServer(store, validator, audit.NewRecorder(store, logger), logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer mock-secret")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body %q)", rec.Code, rec.Body.String())
	}
	var apiErr APIError
	decodeBody(t, rec, &apiErr)
	if apiErr.Error != ErrCodeInternalError {
		t.Errorf("error code = %q, want %q", apiErr.Error, ErrCodeInternalError)
	}
}
