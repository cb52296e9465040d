package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

type memberDTO struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      perm.Role      `json:"role"`
	Overrides perm.Overrides `json:"overrides,omitempty"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toMemberDTO(a *storage.Actor) memberDTO {
	return memberDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Overrides: a.Overrides,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// validRole reports whether the role is part of the vocabulary.
func validRole(role perm.Role) bool {
	switch role {
	case perm.RoleOwner, perm.RoleManager, perm.RoleOperator, perm.RoleAgent:
		return true
	}
	return false
}

// validateOverrides rejects overrides naming unknown categories or levels
// outside the category's hierarchy.
func (s *Server) validateOverrides(o perm.Overrides) error {
	tables := s.validator.Tables()
	for cat, level := range o {
		if _, err := tables.LevelIndex(cat, level); err != nil {
			return err
		}
	}
	return nil
}

// handleListMembers returns the team roster, including deactivated members.
// GET /v1/team/members
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	actors, err := s.store.ListActors(r.Context(), id.Actor.TenantID)
	if err != nil {
		s.writeStorageError(w, err, "team")
		return
	}

	members := make([]memberDTO, 0, len(actors))
	for _, a := range actors {
		members = append(members, toMemberDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

// handleGetMember returns one team member.
// GET /v1/team/members/{id}
func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	actor, err := s.store.GetActor(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStorageError(w, err, "member")
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(actor))
}

type createMemberRequest struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      perm.Role      `json:"role"`
	Password  string         `json:"password"`
	Overrides perm.Overrides `json:"overrides"`
}

// handleCreateMember provisions a team member, human or automated. A
// password is hashed with bcrypt when supplied; automated members carry
// none and authenticate by credential only.
// POST /v1/team/members
func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "email is required")
		return
	}
	if !validRole(req.Role) {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown role")
		return
	}
	if err := s.validateOverrides(req.Overrides); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid overrides: "+err.Error())
		return
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := storage.HashPassword(req.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
			return
		}
		passwordHash = hash
	}

	actor, err := s.store.CreateActor(r.Context(), &storage.Actor{
		TenantID:     id.Actor.TenantID,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: passwordHash,
		Overrides:    req.Overrides,
	})
	if err != nil {
		s.writeStorageError(w, err, "member")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "member.create", "actor", actor.ID, actor.Email)
	writeJSON(w, http.StatusCreated, toMemberDTO(actor))
}

type updateMemberRequest struct {
	Name      *string         `json:"name"`
	Role      *perm.Role      `json:"role"`
	Overrides *perm.Overrides `json:"overrides"`
	Active    *bool           `json:"active"`
}

// handleUpdateMember edits role, overrides, name or active flag. Members
// are deactivated, never deleted, so audit history stays attributable.
// PATCH /v1/team/members/{id}
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Role != nil && !validRole(*req.Role) {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown role")
		return
	}
	if req.Overrides != nil {
		if err := s.validateOverrides(*req.Overrides); err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid overrides: "+err.Error())
			return
		}
	}

	actor, err := s.store.UpdateActor(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"), storage.ActorUpdate{
		Name:      req.Name,
		Role:      req.Role,
		Overrides: req.Overrides,
		Active:    req.Active,
	})
	if err != nil {
		s.writeStorageError(w, err, "member")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "member.update", "actor", actor.ID, "")
	writeJSON(w, http.StatusOK, toMemberDTO(actor))
}
