package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

type leadDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Source    string    `json:"source,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toLeadDTO(l *storage.Lead) leadDTO {
	return leadDTO{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Status:    l.Status,
		Source:    l.Source,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// editScope resolves how far the caller's write access reaches in a
// category: full edit, own records only, or nothing. Handlers whose
// required level depends on record ownership use this instead of the fixed
// route gate.
func (s *Server) editScope(w http.ResponseWriter, r *http.Request, cat perm.Category) (id *auth.Identity, ownOnly bool, ok bool) {
	id = auth.IdentityFromContext(r.Context())
	if id == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeNotAuthenticated, "missing credential")
		return nil, false, false
	}

	if err := s.validator.Require(id, cat, perm.LevelEdit); err == nil {
		return id, false, true
	} else if !errors.Is(err, auth.ErrForbidden) {
		s.logger.Error("permission check error", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return nil, false, false
	}

	if err := s.validator.Require(id, cat, perm.LevelEditOwn); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permission")
			return nil, false, false
		}
		s.logger.Error("permission check error", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return nil, false, false
	}
	return id, true, true
}

// handleListLeads serves a cursor page of leads.
// GET /v1/leads?status=&owner_id=&source=&limit=&cursor=
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID

	servePage(s, w, r, storage.LeadsCollection, []string{"status", "owner_id", "source"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Lead, error) {
			return s.store.FetchLeadPage(ctx, tenantID, indexed, after, fetchLimit)
		}, toLeadDTO)
}

// handleGetLead returns one lead.
// GET /v1/leads/{id}
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	lead, err := s.store.GetLead(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStorageError(w, err, "lead")
		return
	}
	writeJSON(w, http.StatusOK, toLeadDTO(lead))
}

type createLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
	Source  string `json:"source"`
	OwnerID string `json:"owner_id"`
}

// handleCreateLead creates a lead. Callers restricted to their own records
// always become the owner, regardless of the requested owner_id.
// POST /v1/leads
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryRecords)
	if !ok {
		return
	}

	var req createLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "name is required")
		return
	}

	ownerID := req.OwnerID
	if ownOnly || ownerID == "" {
		ownerID = id.Actor.ID
	}

	lead, err := s.store.CreateLead(r.Context(), &storage.Lead{
		TenantID: id.Actor.TenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Status:   req.Status,
		Source:   req.Source,
		OwnerID:  ownerID,
	})
	if err != nil {
		s.writeStorageError(w, err, "lead")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "lead.create", "lead", lead.ID, lead.Name)
	writeJSON(w, http.StatusCreated, toLeadDTO(lead))
}

type updateLeadRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Status  *string `json:"status"`
	Source  *string `json:"source"`
	OwnerID *string `json:"owner_id"`
}

// handleUpdateLead applies a partial update. Own-records callers may only
// touch leads they own, and may not reassign ownership.
// PATCH /v1/leads/{id}
func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryRecords)
	if !ok {
		return
	}

	leadID := chi.URLParam(r, "id")

	var req updateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if ownOnly {
		existing, err := s.store.GetLead(r.Context(), id.Actor.TenantID, leadID)
		if err != nil {
			s.writeStorageError(w, err, "lead")
			return
		}
		if existing.OwnerID != id.Actor.ID {
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "not the record owner")
			return
		}
		if req.OwnerID != nil && *req.OwnerID != id.Actor.ID {
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "cannot reassign ownership")
			return
		}
	}

	lead, err := s.store.UpdateLead(r.Context(), id.Actor.TenantID, leadID, storage.LeadUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  req.Status,
		Source:  req.Source,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		s.writeStorageError(w, err, "lead")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "lead.update", "lead", lead.ID, "")
	writeJSON(w, http.StatusOK, toLeadDTO(lead))
}
