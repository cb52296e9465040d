package api

import (
	"context"
	"time"

	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

// Store is the persistence surface the handlers need. *storage.SQLiteStorage
// satisfies it; tests may substitute a mock.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, l *storage.Lead) (*storage.Lead, error)
	GetLead(ctx context.Context, tenantID, id string) (*storage.Lead, error)
	UpdateLead(ctx context.Context, tenantID, id string, upd storage.LeadUpdate) (*storage.Lead, error)
	FetchLeadPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Lead, error)
	CountLeads(ctx context.Context, tenantID string) (int64, error)

	// Contacts
	CreateContact(ctx context.Context, c *storage.Contact) (*storage.Contact, error)
	GetContact(ctx context.Context, tenantID, id string) (*storage.Contact, error)
	UpdateContact(ctx context.Context, tenantID, id string, upd storage.ContactUpdate) (*storage.Contact, error)
	FetchContactPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Contact, error)
	CountContacts(ctx context.Context, tenantID string) (int64, error)

	// Conversations and messages
	CreateConversation(ctx context.Context, c *storage.Conversation) (*storage.Conversation, error)
	GetConversation(ctx context.Context, tenantID, id string) (*storage.Conversation, error)
	UpdateConversation(ctx context.Context, tenantID, id string, upd storage.ConversationUpdate) (*storage.Conversation, error)
	FetchConversationPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Conversation, error)
	CountOpenConversations(ctx context.Context, tenantID string) (int64, error)
	CreateMessage(ctx context.Context, m *storage.Message) (*storage.Message, error)
	FetchMessagePage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Message, error)

	// Tasks
	CreateTask(ctx context.Context, t *storage.Task) (*storage.Task, error)
	GetTask(ctx context.Context, tenantID, id string) (*storage.Task, error)
	UpdateTask(ctx context.Context, tenantID, id string, upd storage.TaskUpdate) (*storage.Task, error)
	FetchTaskPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Task, error)
	CountOpenTasks(ctx context.Context, tenantID string) (int64, error)

	// Team
	CreateActor(ctx context.Context, a *storage.Actor) (*storage.Actor, error)
	GetActor(ctx context.Context, tenantID, id string) (*storage.Actor, error)
	ListActors(ctx context.Context, tenantID string) ([]*storage.Actor, error)
	UpdateActor(ctx context.Context, tenantID, id string, upd storage.ActorUpdate) (*storage.Actor, error)

	// Credentials
	CreateCredential(ctx context.Context, c *storage.Credential, rawSecret string) (*storage.Credential, error)
	GetCredential(ctx context.Context, tenantID, id string) (*storage.Credential, error)
	ListCredentials(ctx context.Context, tenantID string) ([]*storage.Credential, error)
	RevokeCredential(ctx context.Context, tenantID, id string) error

	// Settings
	GetSetting(ctx context.Context, tenantID, key string) (*storage.Setting, error)
	SetSetting(ctx context.Context, tenantID, key, value string) (*storage.Setting, error)
	ListSettings(ctx context.Context, tenantID string) ([]*storage.Setting, error)

	// Audit
	FetchAuditPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.AuditEntry, error)

	// Health
	Ping() error

	// Validation side effects
	TouchCredential(ctx context.Context, id string, usedAt time.Time) error
	GetCredentialByHash(ctx context.Context, secretHash string) (*storage.Credential, error)
	GetActorByID(ctx context.Context, id string) (*storage.Actor, error)
}
