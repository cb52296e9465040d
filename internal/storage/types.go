package storage

import (
	"time"

	"github.com/maplecrm/records-api/internal/perm"
)

// Tenant is one isolated customer workspace.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Actor is a provisioned team member, human or automated. Actors are never
// deleted, only deactivated, so audit entries stay attributable.
type Actor struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	Role         perm.Role
	PasswordHash string
	// Overrides holds per-category permission overrides. A nil or empty
	// map means the role defaults apply unchanged.
	Overrides perm.Overrides
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential is a long-lived bearer secret bound to one actor. Only the
// SHA-256 hash of the secret is stored. Revocation clears Active; rows are
// never physically removed, for audit continuity.
type Credential struct {
	ID       string
	TenantID string
	ActorID  string
	Name     string
	// SecretHash is the hex SHA-256 of the raw secret.
	SecretHash string
	// Permissions, when non-nil, is a complete replacement permission
	// map: it entirely overrides role-based resolution for requests
	// authenticated with this credential.
	Permissions perm.Overrides
	Active      bool
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	CreatedAt   time.Time
}

// Lead is a sales lead record.
type Lead struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Phone     string
	Status    string
	Source    string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PageKey returns the composite pagination sort key.
func (l *Lead) PageKey() (time.Time, string) { return l.CreatedAt, l.ID }

// DimValue returns the lead's value for a filterable dimension.
func (l *Lead) DimValue(dim string) string {
	switch dim {
	case "status":
		return l.Status
	case "owner_id":
		return l.OwnerID
	case "source":
		return l.Source
	}
	return ""
}

// Contact is an established customer contact.
type Contact struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Phone     string
	Company   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Contact) PageKey() (time.Time, string) { return c.CreatedAt, c.ID }

func (c *Contact) DimValue(dim string) string {
	switch dim {
	case "owner_id":
		return c.OwnerID
	case "company":
		return c.Company
	}
	return ""
}

// Conversation is an inbox thread with a contact.
type Conversation struct {
	ID         string
	TenantID   string
	ContactID  string
	Subject    string
	Channel    string
	Status     string
	AssigneeID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Conversation) PageKey() (time.Time, string) { return c.CreatedAt, c.ID }

func (c *Conversation) DimValue(dim string) string {
	switch dim {
	case "status":
		return c.Status
	case "channel":
		return c.Channel
	case "assignee_id":
		return c.AssigneeID
	case "contact_id":
		return c.ContactID
	}
	return ""
}

// Message is one message inside a conversation.
type Message struct {
	ID             string
	TenantID       string
	ConversationID string
	AuthorID       string
	Direction      string // "inbound" or "outbound"
	Body           string
	CreatedAt      time.Time
}

func (m *Message) PageKey() (time.Time, string) { return m.CreatedAt, m.ID }

func (m *Message) DimValue(dim string) string {
	switch dim {
	case "conversation_id":
		return m.ConversationID
	case "author_id":
		return m.AuthorID
	case "direction":
		return m.Direction
	}
	return ""
}

// Task is a to-do item assigned to a team member.
type Task struct {
	ID         string
	TenantID   string
	Title      string
	Status     string
	Kind       string
	AssigneeID string
	DueAt      *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t *Task) PageKey() (time.Time, string) { return t.CreatedAt, t.ID }

func (t *Task) DimValue(dim string) string {
	switch dim {
	case "status":
		return t.Status
	case "assignee_id":
		return t.AssigneeID
	case "kind":
		return t.Kind
	}
	return ""
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

func (e *AuditEntry) PageKey() (time.Time, string) { return e.CreatedAt, e.ID }

func (e *AuditEntry) DimValue(dim string) string {
	switch dim {
	case "actor_id":
		return e.ActorID
	case "action":
		return e.Action
	case "entity_type":
		return e.EntityType
	}
	return ""
}
