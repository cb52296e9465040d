package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maplecrm/records-api/internal/ids"
	"github.com/maplecrm/records-api/internal/query"
)

const conversationColumns = "id, tenant_id, contact_id, subject, channel, status, assignee_id, created_at, updated_at"

// CreateConversation opens an inbox thread.
func (s *SQLiteStorage) CreateConversation(ctx context.Context, c *Conversation) (*Conversation, error) {
	if c.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if c.Channel == "" {
		return nil, errors.New("channel required")
	}
	if c.Status == "" {
		c.Status = "open"
	}

	now := time.Now().UTC()
	c.ID = ids.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, tenant_id, contact_id, subject, channel, status, assignee_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.TenantID, c.ContactID, c.Subject, c.Channel, c.Status, c.AssigneeID,
		millis(c.CreatedAt), millis(c.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// GetConversation retrieves a conversation within a tenant.
func (s *SQLiteStorage) GetConversation(ctx context.Context, tenantID, id string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanConversation(row)
}

// ConversationUpdate holds the patchable conversation fields.
type ConversationUpdate struct {
	Subject    *string
	Status     *string
	AssigneeID *string
}

// UpdateConversation applies a partial update.
func (s *SQLiteStorage) UpdateConversation(ctx context.Context, tenantID, id string, upd ConversationUpdate) (*Conversation, error) {
	c, err := s.GetConversation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Subject != nil {
		c.Subject = *upd.Subject
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.AssigneeID != nil {
		c.AssigneeID = *upd.AssigneeID
	}
	c.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE conversations SET subject = ?, status = ?, assignee_id = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
		c.Subject, c.Status, c.AssigneeID, millis(c.UpdatedAt), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return c, nil
}

// FetchConversationPage is the pagination source for conversations.
func (s *SQLiteStorage) FetchConversationPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*Conversation, error) {
	q := "SELECT " + conversationColumns + " FROM conversations WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(ConversationsCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	conversations := make([]*Conversation, 0, fetchLimit)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return conversations, nil
}

// CreateMessage appends a message to a conversation and bumps the
// conversation's updated_at.
func (s *SQLiteStorage) CreateMessage(ctx context.Context, m *Message) (*Message, error) {
	if m.TenantID == "" || m.ConversationID == "" {
		return nil, errors.New("tenant_id and conversation_id required")
	}
	if m.Body == "" {
		return nil, errors.New("body required")
	}
	if m.Direction == "" {
		m.Direction = "outbound"
	}

	// The conversation must exist in the same tenant.
	if _, err := s.GetConversation(ctx, m.TenantID, m.ConversationID); err != nil {
		return nil, err
	}

	m.ID = ids.New()
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, tenant_id, conversation_id, author_id, direction, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.TenantID, m.ConversationID, m.AuthorID, m.Direction, m.Body, millis(m.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE tenant_id = ? AND id = ?",
		millis(m.CreatedAt), m.TenantID, m.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to bump conversation: %w", err)
	}
	return m, nil
}

// FetchMessagePage is the pagination source for messages.
func (s *SQLiteStorage) FetchMessagePage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*Message, error) {
	q := "SELECT id, tenant_id, conversation_id, author_id, direction, body, created_at FROM messages WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(MessagesCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	messages := make([]*Message, 0, fetchLimit)
	for rows.Next() {
		var m Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ConversationID, &m.AuthorID, &m.Direction, &m.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = fromMillis(createdAt)
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var c Conversation
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.TenantID, &c.ContactID, &c.Subject, &c.Channel, &c.Status,
		&c.AssigneeID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

// CountOpenConversations returns the number of open conversations in a
// tenant, for reporting.
func (s *SQLiteStorage) CountOpenConversations(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE tenant_id = ? AND status = 'open'", tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}
