package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

type contactDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContactDTO(c *storage.Contact) contactDTO {
	return contactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// handleListContacts serves a cursor page of contacts.
// GET /v1/contacts?owner_id=&company=&limit=&cursor=
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID

	servePage(s, w, r, storage.ContactsCollection, []string{"owner_id", "company"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Contact, error) {
			return s.store.FetchContactPage(ctx, tenantID, indexed, after, fetchLimit)
		}, toContactDTO)
}

// handleGetContact returns one contact.
// GET /v1/contacts/{id}
func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	contact, err := s.store.GetContact(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStorageError(w, err, "contact")
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	OwnerID string `json:"owner_id"`
}

// handleCreateContact creates a contact.
// POST /v1/contacts
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryRecords)
	if !ok {
		return
	}

	var req createContactRequest
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

	contact, err := s.store.CreateContact(r.Context(), &storage.Contact{
		TenantID: id.Actor.TenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		OwnerID:  ownerID,
	})
	if err != nil {
		s.writeStorageError(w, err, "contact")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "contact.create", "contact", contact.ID, contact.Name)
	writeJSON(w, http.StatusCreated, toContactDTO(contact))
}

type updateContactRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	OwnerID *string `json:"owner_id"`
}

// handleUpdateContact applies a partial update with the same own-records
// scope rules as leads.
// PATCH /v1/contacts/{id}
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryRecords)
	if !ok {
		return
	}

	contactID := chi.URLParam(r, "id")

	var req updateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if ownOnly {
		existing, err := s.store.GetContact(r.Context(), id.Actor.TenantID, contactID)
		if err != nil {
			s.writeStorageError(w, err, "contact")
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

	contact, err := s.store.UpdateContact(r.Context(), id.Actor.TenantID, contactID, storage.ContactUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		s.writeStorageError(w, err, "contact")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "contact.update", "contact", contact.ID, "")
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}
