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

const contactColumns = "id, tenant_id, name, email, phone, company, owner_id, created_at, updated_at"

// CreateContact inserts a contact record.
func (s *SQLiteStorage) CreateContact(ctx context.Context, c *Contact) (*Contact, error) {
	if c.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if c.Name == "" {
		return nil, errors.New("name required")
	}

	now := time.Now().UTC()
	c.ID = ids.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (id, tenant_id, name, email, phone, company, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Company, c.OwnerID,
		millis(c.CreatedAt), millis(c.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

// GetContact retrieves a contact within a tenant.
func (s *SQLiteStorage) GetContact(ctx context.Context, tenantID, id string) (*Contact, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanContact(row)
}

// ContactUpdate holds the patchable contact fields.
type ContactUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	OwnerID *string
}

// UpdateContact applies a partial update.
func (s *SQLiteStorage) UpdateContact(ctx context.Context, tenantID, id string, upd ContactUpdate) (*Contact, error) {
	c, err := s.GetContact(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Company != nil {
		c.Company = *upd.Company
	}
	if upd.OwnerID != nil {
		c.OwnerID = *upd.OwnerID
	}
	c.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, owner_id = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
		c.Name, c.Email, c.Phone, c.Company, c.OwnerID, millis(c.UpdatedAt), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return c, nil
}

// FetchContactPage is the pagination source for contacts.
func (s *SQLiteStorage) FetchContactPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*Contact, error) {
	q := "SELECT " + contactColumns + " FROM contacts WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(ContactsCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	contacts := make([]*Contact, 0, fetchLimit)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// CountContacts returns the number of contacts in a tenant, for reporting.
func (s *SQLiteStorage) CountContacts(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts WHERE tenant_id = ?", tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

func scanContact(row rowScanner) (*Contact, error) {
	var c Contact
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company,
		&c.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}
