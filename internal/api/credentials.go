package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

type credentialDTO struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actor_id"`
	Name        string         `json:"name"`
	Permissions perm.Overrides `json:"permissions,omitempty"`
	Active      bool           `json:"active"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time     `json:"last_used_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toCredentialDTO(c *storage.Credential) credentialDTO {
	return credentialDTO{
		ID:          c.ID,
		ActorID:     c.ActorID,
		Name:        c.Name,
		Permissions: c.Permissions,
		Active:      c.Active,
		ExpiresAt:   c.ExpiresAt,
		LastUsedAt:  c.LastUsedAt,
		CreatedAt:   c.CreatedAt,
	}
}

// generateSecret produces a 256-bit random secret, hex encoded.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// handleListCredentials returns all credentials in the tenant, revoked
// included. Secrets are never returned; only metadata.
// GET /v1/credentials
func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	creds, err := s.store.ListCredentials(r.Context(), id.Actor.TenantID)
	if err != nil {
		s.writeStorageError(w, err, "credentials")
		return
	}

	out := make([]credentialDTO, 0, len(creds))
	for _, c := range creds {
		out = append(out, toCredentialDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": out})
}

type createCredentialRequest struct {
	ActorID     string         `json:"actor_id"`
	Name        string         `json:"name"`
	Permissions perm.Overrides `json:"permissions"`
	ExpiresAt   *time.Time     `json:"expires_at"`
}

type createCredentialResponse struct {
	credentialDTO
	// Secret is returned exactly once, at issuance. Only its hash is
	// stored.
	Secret string `json:"secret"`
}

// handleCreateCredential issues a credential for an actor in the tenant.
// POST /v1/credentials
func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req createCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.ActorID == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "actor_id is required")
		return
	}
	if err := s.validateOverrides(req.Permissions); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid permissions: "+err.Error())
		return
	}

	// The target actor must exist in the caller's tenant.
	if _, err := s.store.GetActor(r.Context(), id.Actor.TenantID, req.ActorID); err != nil {
		s.writeStorageError(w, err, "actor")
		return
	}

	secret, err := generateSecret()
	if err != nil {
		s.logger.Error("failed to generate secret", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	cred, err := s.store.CreateCredential(r.Context(), &storage.Credential{
		TenantID:    id.Actor.TenantID,
		ActorID:     req.ActorID,
		Name:        req.Name,
		Permissions: req.Permissions,
		ExpiresAt:   req.ExpiresAt,
	}, secret)
	if err != nil {
		s.writeStorageError(w, err, "credential")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "credential.create", "credential", cred.ID, cred.Name)
	writeJSON(w, http.StatusCreated, createCredentialResponse{
		credentialDTO: toCredentialDTO(cred),
		Secret:        secret,
	})
}

// handleRevokeCredential clears the active flag; the row stays for audit.
// DELETE /v1/credentials/{id}
func (s *Server) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	credID := chi.URLParam(r, "id")

	if err := s.store.RevokeCredential(r.Context(), id.Actor.TenantID, credID); err != nil {
		s.writeStorageError(w, err, "credential")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "credential.revoke", "credential", credID, "")
	w.WriteHeader(http.StatusNoContent)
}
