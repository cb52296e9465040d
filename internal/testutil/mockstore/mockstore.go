// Package mockstore provides a configurable mock implementation of the
// handler storage surface for testing.
//
// The MockStore type uses function fields for each method, allowing tests to
// customize behavior as needed while providing sensible defaults for methods
// that aren't customized.
package mockstore

import (
	"context"
	"time"

	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

// MockStore is a configurable mock of the api.Store surface. Each method can
// be customized by setting the corresponding function field. If a function
// field is nil, the method returns a sensible zero-value default.
type MockStore struct {
	// Leads
	CreateLeadFunc    func(ctx context.Context, l *storage.Lead) (*storage.Lead, error)
	GetLeadFunc       func(ctx context.Context, tenantID, id string) (*storage.Lead, error)
	UpdateLeadFunc    func(ctx context.Context, tenantID, id string, upd storage.LeadUpdate) (*storage.Lead, error)
	FetchLeadPageFunc func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Lead, error)
	CountLeadsFunc    func(ctx context.Context, tenantID string) (int64, error)

	// Contacts
	CreateContactFunc    func(ctx context.Context, c *storage.Contact) (*storage.Contact, error)
	GetContactFunc       func(ctx context.Context, tenantID, id string) (*storage.Contact, error)
	UpdateContactFunc    func(ctx context.Context, tenantID, id string, upd storage.ContactUpdate) (*storage.Contact, error)
	FetchContactPageFunc func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Contact, error)
	CountContactsFunc    func(ctx context.Context, tenantID string) (int64, error)

	// Conversations and messages
	CreateConversationFunc     func(ctx context.Context, c *storage.Conversation) (*storage.Conversation, error)
	GetConversationFunc        func(ctx context.Context, tenantID, id string) (*storage.Conversation, error)
	UpdateConversationFunc     func(ctx context.Context, tenantID, id string, upd storage.ConversationUpdate) (*storage.Conversation, error)
	FetchConversationPageFunc  func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Conversation, error)
	CountOpenConversationsFunc func(ctx context.Context, tenantID string) (int64, error)
	CreateMessageFunc          func(ctx context.Context, m *storage.Message) (*storage.Message, error)
	FetchMessagePageFunc       func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Message, error)

	// Tasks
	CreateTaskFunc     func(ctx context.Context, t *storage.Task) (*storage.Task, error)
	GetTaskFunc        func(ctx context.Context, tenantID, id string) (*storage.Task, error)
	UpdateTaskFunc     func(ctx context.Context, tenantID, id string, upd storage.TaskUpdate) (*storage.Task, error)
	FetchTaskPageFunc  func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Task, error)
	CountOpenTasksFunc func(ctx context.Context, tenantID string) (int64, error)

	// Team
	CreateActorFunc func(ctx context.Context, a *storage.Actor) (*storage.Actor, error)
	GetActorFunc    func(ctx context.Context, tenantID, id string) (*storage.Actor, error)
	ListActorsFunc  func(ctx context.Context, tenantID string) ([]*storage.Actor, error)
	UpdateActorFunc func(ctx context.Context, tenantID, id string, upd storage.ActorUpdate) (*storage.Actor, error)

	// Credentials
	CreateCredentialFunc    func(ctx context.Context, c *storage.Credential, rawSecret string) (*storage.Credential, error)
	GetCredentialFunc       func(ctx context.Context, tenantID, id string) (*storage.Credential, error)
	ListCredentialsFunc     func(ctx context.Context, tenantID string) ([]*storage.Credential, error)
	RevokeCredentialFunc    func(ctx context.Context, tenantID, id string) error
	GetCredentialByHashFunc func(ctx context.Context, secretHash string) (*storage.Credential, error)
	TouchCredentialFunc     func(ctx context.Context, id string, usedAt time.Time) error
	GetActorByIDFunc        func(ctx context.Context, id string) (*storage.Actor, error)

	// Settings
	GetSettingFunc   func(ctx context.Context, tenantID, key string) (*storage.Setting, error)
	SetSettingFunc   func(ctx context.Context, tenantID, key, value string) (*storage.Setting, error)
	ListSettingsFunc func(ctx context.Context, tenantID string) ([]*storage.Setting, error)

	// Audit
	AppendAuditFunc    func(ctx context.Context, e *storage.AuditEntry) (*storage.AuditEntry, error)
	FetchAuditPageFunc func(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.AuditEntry, error)

	// Lifecycle
	PingFunc func() error
}

func (m *MockStore) CreateLead(ctx context.Context, l *storage.Lead) (*storage.Lead, error) {
	if m.CreateLeadFunc != nil {
		return m.CreateLeadFunc(ctx, l)
	}
	return l, nil
}

func (m *MockStore) GetLead(ctx context.Context, tenantID, id string) (*storage.Lead, error) {
	if m.GetLeadFunc != nil {
		return m.GetLeadFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) UpdateLead(ctx context.Context, tenantID, id string, upd storage.LeadUpdate) (*storage.Lead, error) {
	if m.UpdateLeadFunc != nil {
		return m.UpdateLeadFunc(ctx, tenantID, id, upd)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) FetchLeadPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Lead, error) {
	if m.FetchLeadPageFunc != nil {
		return m.FetchLeadPageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) CountLeads(ctx context.Context, tenantID string) (int64, error) {
	if m.CountLeadsFunc != nil {
		return m.CountLeadsFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *MockStore) CreateContact(ctx context.Context, c *storage.Contact) (*storage.Contact, error) {
	if m.CreateContactFunc != nil {
		return m.CreateContactFunc(ctx, c)
	}
	return c, nil
}

func (m *MockStore) GetContact(ctx context.Context, tenantID, id string) (*storage.Contact, error) {
	if m.GetContactFunc != nil {
		return m.GetContactFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) UpdateContact(ctx context.Context, tenantID, id string, upd storage.ContactUpdate) (*storage.Contact, error) {
	if m.UpdateContactFunc != nil {
		return m.UpdateContactFunc(ctx, tenantID, id, upd)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) FetchContactPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Contact, error) {
	if m.FetchContactPageFunc != nil {
		return m.FetchContactPageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) CountContacts(ctx context.Context, tenantID string) (int64, error) {
	if m.CountContactsFunc != nil {
		return m.CountContactsFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *MockStore) CreateConversation(ctx context.Context, c *storage.Conversation) (*storage.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(ctx, c)
	}
	return c, nil
}

func (m *MockStore) GetConversation(ctx context.Context, tenantID, id string) (*storage.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) UpdateConversation(ctx context.Context, tenantID, id string, upd storage.ConversationUpdate) (*storage.Conversation, error) {
	if m.UpdateConversationFunc != nil {
		return m.UpdateConversationFunc(ctx, tenantID, id, upd)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) FetchConversationPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Conversation, error) {
	if m.FetchConversationPageFunc != nil {
		return m.FetchConversationPageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) CountOpenConversations(ctx context.Context, tenantID string) (int64, error) {
	if m.CountOpenConversationsFunc != nil {
		return m.CountOpenConversationsFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *MockStore) CreateMessage(ctx context.Context, msg *storage.Message) (*storage.Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(ctx, msg)
	}
	return msg, nil
}

func (m *MockStore) FetchMessagePage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Message, error) {
	if m.FetchMessagePageFunc != nil {
		return m.FetchMessagePageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) CreateTask(ctx context.Context, t *storage.Task) (*storage.Task, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, t)
	}
	return t, nil
}

func (m *MockStore) GetTask(ctx context.Context, tenantID, id string) (*storage.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) UpdateTask(ctx context.Context, tenantID, id string, upd storage.TaskUpdate) (*storage.Task, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, tenantID, id, upd)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) FetchTaskPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Task, error) {
	if m.FetchTaskPageFunc != nil {
		return m.FetchTaskPageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) CountOpenTasks(ctx context.Context, tenantID string) (int64, error) {
	if m.CountOpenTasksFunc != nil {
		return m.CountOpenTasksFunc(ctx, tenantID)
	}
	return 0, nil
}

func (m *MockStore) CreateActor(ctx context.Context, a *storage.Actor) (*storage.Actor, error) {
	if m.CreateActorFunc != nil {
		return m.CreateActorFunc(ctx, a)
	}
	return a, nil
}

func (m *MockStore) GetActor(ctx context.Context, tenantID, id string) (*storage.Actor, error) {
	if m.GetActorFunc != nil {
		return m.GetActorFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) ListActors(ctx context.Context, tenantID string) ([]*storage.Actor, error) {
	if m.ListActorsFunc != nil {
		return m.ListActorsFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *MockStore) UpdateActor(ctx context.Context, tenantID, id string, upd storage.ActorUpdate) (*storage.Actor, error) {
	if m.UpdateActorFunc != nil {
		return m.UpdateActorFunc(ctx, tenantID, id, upd)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) CreateCredential(ctx context.Context, c *storage.Credential, rawSecret string) (*storage.Credential, error) {
	if m.CreateCredentialFunc != nil {
		return m.CreateCredentialFunc(ctx, c, rawSecret)
	}
	return c, nil
}

func (m *MockStore) GetCredential(ctx context.Context, tenantID, id string) (*storage.Credential, error) {
	if m.GetCredentialFunc != nil {
		return m.GetCredentialFunc(ctx, tenantID, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) ListCredentials(ctx context.Context, tenantID string) ([]*storage.Credential, error) {
	if m.ListCredentialsFunc != nil {
		return m.ListCredentialsFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *MockStore) RevokeCredential(ctx context.Context, tenantID, id string) error {
	if m.RevokeCredentialFunc != nil {
		return m.RevokeCredentialFunc(ctx, tenantID, id)
	}
	return storage.ErrNotFound
}

func (m *MockStore) GetCredentialByHash(ctx context.Context, secretHash string) (*storage.Credential, error) {
	if m.GetCredentialByHashFunc != nil {
		return m.GetCredentialByHashFunc(ctx, secretHash)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) TouchCredential(ctx context.Context, id string, usedAt time.Time) error {
	if m.TouchCredentialFunc != nil {
		return m.TouchCredentialFunc(ctx, id, usedAt)
	}
	return nil
}

func (m *MockStore) GetActorByID(ctx context.Context, id string) (*storage.Actor, error) {
	if m.GetActorByIDFunc != nil {
		return m.GetActorByIDFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) GetSetting(ctx context.Context, tenantID, key string) (*storage.Setting, error) {
	if m.GetSettingFunc != nil {
		return m.GetSettingFunc(ctx, tenantID, key)
	}
	return nil, storage.ErrNotFound
}

func (m *MockStore) SetSetting(ctx context.Context, tenantID, key, value string) (*storage.Setting, error) {
	if m.SetSettingFunc != nil {
		return m.SetSettingFunc(ctx, tenantID, key, value)
	}
	return &storage.Setting{TenantID: tenantID, Key: key, Value: value, UpdatedAt: time.Now().UTC()}, nil
}

func (m *MockStore) ListSettings(ctx context.Context, tenantID string) ([]*storage.Setting, error) {
	if m.ListSettingsFunc != nil {
		return m.ListSettingsFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *MockStore) AppendAudit(ctx context.Context, e *storage.AuditEntry) (*storage.AuditEntry, error) {
	if m.AppendAuditFunc != nil {
		return m.AppendAuditFunc(ctx, e)
	}
	return e, nil
}

func (m *MockStore) FetchAuditPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.AuditEntry, error) {
	if m.FetchAuditPageFunc != nil {
		return m.FetchAuditPageFunc(ctx, tenantID, indexed, after, fetchLimit)
	}
	return nil, nil
}

func (m *MockStore) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}
