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

const taskColumns = "id, tenant_id, title, status, kind, assignee_id, due_at, created_at, updated_at"

// CreateTask inserts a task record.
func (s *SQLiteStorage) CreateTask(ctx context.Context, t *Task) (*Task, error) {
	if t.TenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	if t.Title == "" {
		return nil, errors.New("title required")
	}
	if t.Status == "" {
		t.Status = "open"
	}

	now := time.Now().UTC()
	t.ID = ids.New()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, tenant_id, title, status, kind, assignee_id, due_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.TenantID, t.Title, t.Status, t.Kind, t.AssigneeID,
		nullMillis(t.DueAt), millis(t.CreatedAt), millis(t.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// GetTask retrieves a task within a tenant.
func (s *SQLiteStorage) GetTask(ctx context.Context, tenantID, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE tenant_id = ? AND id = ?", tenantID, id)
	return scanTask(row)
}

// TaskUpdate holds the patchable task fields.
type TaskUpdate struct {
	Title      *string
	Status     *string
	Kind       *string
	AssigneeID *string
	DueAt      *time.Time
}

// UpdateTask applies a partial update.
func (s *SQLiteStorage) UpdateTask(ctx context.Context, tenantID, id string, upd TaskUpdate) (*Task, error) {
	t, err := s.GetTask(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Kind != nil {
		t.Kind = *upd.Kind
	}
	if upd.AssigneeID != nil {
		t.AssigneeID = *upd.AssigneeID
	}
	if upd.DueAt != nil {
		t.DueAt = upd.DueAt
	}
	t.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, status = ?, kind = ?, assignee_id = ?, due_at = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
		t.Title, t.Status, t.Kind, t.AssigneeID, nullMillis(t.DueAt), millis(t.UpdatedAt), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// FetchTaskPage is the pagination source for tasks.
func (s *SQLiteStorage) FetchTaskPage(ctx context.Context, tenantID string, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE tenant_id = ?"
	args := []any{tenantID}

	if indexed != nil {
		col, err := indexedColumn(TasksCollection, indexed)
		if err != nil {
			return nil, err
		}
		q += " AND " + col + " = ?"
		args = append(args, indexed.Value)
	}

	tail, args := pageWindow(after, args, fetchLimit)
	rows, err := s.db.QueryContext(ctx, q+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks page: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	tasks := make([]*Task, 0, fetchLimit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// CountOpenTasks returns the number of open tasks in a tenant, for
// reporting.
func (s *SQLiteStorage) CountOpenTasks(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE tenant_id = ? AND status = 'open'", tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var dueAt sql.NullInt64
	var createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.TenantID, &t.Title, &t.Status, &t.Kind, &t.AssigneeID,
		&dueAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.DueAt = timePtr(dueAt)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
