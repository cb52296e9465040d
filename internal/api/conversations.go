package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

type conversationDTO struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contact_id,omitempty"`
	Subject    string    `json:"subject"`
	Channel    string    `json:"channel,omitempty"`
	Status     string    `json:"status"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toConversationDTO(c *storage.Conversation) conversationDTO {
	return conversationDTO{
		ID:         c.ID,
		ContactID:  c.ContactID,
		Subject:    c.Subject,
		Channel:    c.Channel,
		Status:     c.Status,
		AssigneeID: c.AssigneeID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type messageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id,omitempty"`
	Direction      string    `json:"direction"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessageDTO(m *storage.Message) messageDTO {
	return messageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		AuthorID:       m.AuthorID,
		Direction:      m.Direction,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
}

// handleListConversations serves a cursor page of conversations.
// GET /v1/conversations?status=&assignee_id=&channel=&contact_id=&limit=&cursor=
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID

	servePage(s, w, r, storage.ConversationsCollection,
		[]string{"status", "assignee_id", "channel", "contact_id"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Conversation, error) {
			return s.store.FetchConversationPage(ctx, tenantID, indexed, after, fetchLimit)
		}, toConversationDTO)
}

// handleGetConversation returns one conversation.
// GET /v1/conversations/{id}
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	conv, err := s.store.GetConversation(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStorageError(w, err, "conversation")
		return
	}
	writeJSON(w, http.StatusOK, toConversationDTO(conv))
}

type createConversationRequest struct {
	ContactID  string `json:"contact_id"`
	Subject    string `json:"subject"`
	Channel    string `json:"channel"`
	AssigneeID string `json:"assignee_id"`
}

// handleCreateConversation opens a conversation.
// POST /v1/conversations
func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "subject is required")
		return
	}

	conv, err := s.store.CreateConversation(r.Context(), &storage.Conversation{
		TenantID:   id.Actor.TenantID,
		ContactID:  req.ContactID,
		Subject:    req.Subject,
		Channel:    req.Channel,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		s.writeStorageError(w, err, "conversation")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "conversation.create", "conversation", conv.ID, conv.Subject)
	writeJSON(w, http.StatusCreated, toConversationDTO(conv))
}

type updateConversationRequest struct {
	Subject    *string `json:"subject"`
	Status     *string `json:"status"`
	AssigneeID *string `json:"assignee_id"`
}

// handleUpdateConversation applies a partial update (assign, close).
// PATCH /v1/conversations/{id}
func (s *Server) handleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req updateConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	conv, err := s.store.UpdateConversation(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"), storage.ConversationUpdate{
		Subject:    req.Subject,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		s.writeStorageError(w, err, "conversation")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "conversation.update", "conversation", conv.ID, "")
	writeJSON(w, http.StatusOK, toConversationDTO(conv))
}

// handleListMessages serves a cursor page of a conversation's messages.
// GET /v1/conversations/{id}/messages?author_id=&direction=&limit=&cursor=
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID
	convID := chi.URLParam(r, "id")

	// The conversation must exist in the tenant before its thread is
	// readable; cross-tenant IDs present as not found.
	if _, err := s.store.GetConversation(r.Context(), tenantID, convID); err != nil {
		s.writeStorageError(w, err, "conversation")
		return
	}

	q := r.URL.Query()
	q.Set("conversation_id", convID)
	r.URL.RawQuery = q.Encode()

	servePage(s, w, r, storage.MessagesCollection,
		[]string{"conversation_id", "author_id", "direction"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Message, error) {
			return s.store.FetchMessagePage(ctx, tenantID, indexed, after, fetchLimit)
		}, toMessageDTO)
}

type createMessageRequest struct {
	Direction string `json:"direction"`
	Body      string `json:"body"`
}

// handleCreateMessage appends a message to a conversation.
// POST /v1/conversations/{id}/messages
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req createMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "body is required")
		return
	}
	direction := req.Direction
	if direction == "" {
		direction = "outbound"
	}
	if direction != "inbound" && direction != "outbound" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "direction must be inbound or outbound")
		return
	}

	msg, err := s.store.CreateMessage(r.Context(), &storage.Message{
		TenantID:       id.Actor.TenantID,
		ConversationID: chi.URLParam(r, "id"),
		AuthorID:       id.Actor.ID,
		Direction:      direction,
		Body:           req.Body,
	})
	if err != nil {
		s.writeStorageError(w, err, "conversation")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "message.create", "message", msg.ID, "")
	writeJSON(w, http.StatusCreated, toMessageDTO(msg))
}
