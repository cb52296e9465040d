package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes. Idempotent.
//
// Timestamps are stored as INTEGER unix milliseconds so the composite
// (created_at DESC, id DESC) ordering is exact and matches cursor tokens.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS actors (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			overrides TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(tenant_id, email)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actors_tenant ON actors(tenant_id)`,

		`CREATE TABLE IF NOT EXISTS credentials (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			actor_id TEXT NOT NULL REFERENCES actors(id),
			name TEXT NOT NULL,
			secret_hash TEXT NOT NULL UNIQUE,
			permissions TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			expires_at INTEGER,
			last_used_at INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_credentials_hash ON credentials(secret_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_credentials_tenant ON credentials(tenant_id)`,

		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		// One compound index per indexed dimension, each ending in the
		// pagination sort key.
		`CREATE INDEX IF NOT EXISTS idx_leads_scan ON leads(tenant_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(tenant_id, status, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads(tenant_id, owner_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(tenant_id, source, created_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_scan ON contacts(tenant_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(tenant_id, owner_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(tenant_id, company, created_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			contact_id TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL,
			status TEXT NOT NULL,
			assignee_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_scan ON conversations(tenant_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_status ON conversations(tenant_id, status, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_channel ON conversations(tenant_id, channel, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_assignee ON conversations(tenant_id, assignee_id, created_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			author_id TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(tenant_id, conversation_id, created_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			assignee_id TEXT NOT NULL DEFAULT '',
			due_at INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_scan ON tasks(tenant_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(tenant_id, status, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(tenant_id, assignee_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_kind ON tasks(tenant_id, kind, created_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS settings (
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (tenant_id, key)
		)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_scan ON audit_log(tenant_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log(tenant_id, actor_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_log(tenant_id, action, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entity_type ON audit_log(tenant_id, entity_type, created_at DESC, id DESC)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
