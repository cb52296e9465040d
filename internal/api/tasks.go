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

type taskDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Kind       string     `json:"kind,omitempty"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toTaskDTO(t *storage.Task) taskDTO {
	return taskDTO{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		Kind:       t.Kind,
		AssigneeID: t.AssigneeID,
		DueAt:      t.DueAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// handleListTasks serves a cursor page of tasks.
// GET /v1/tasks?status=&assignee_id=&kind=&limit=&cursor=
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	tenantID := id.Actor.TenantID

	servePage(s, w, r, storage.TasksCollection, []string{"status", "assignee_id", "kind"},
		func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]*storage.Task, error) {
			return s.store.FetchTaskPage(ctx, tenantID, indexed, after, fetchLimit)
		}, toTaskDTO)
}

// handleGetTask returns one task.
// GET /v1/tasks/{id}
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	task, err := s.store.GetTask(r.Context(), id.Actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStorageError(w, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

type createTaskRequest struct {
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Kind       string     `json:"kind"`
	AssigneeID string     `json:"assignee_id"`
	DueAt      *time.Time `json:"due_at"`
}

// handleCreateTask creates a task. Own-records callers always become the
// assignee.
// POST /v1/tasks
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryTasks)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "title is required")
		return
	}

	assigneeID := req.AssigneeID
	if ownOnly || assigneeID == "" {
		assigneeID = id.Actor.ID
	}

	task, err := s.store.CreateTask(r.Context(), &storage.Task{
		TenantID:   id.Actor.TenantID,
		Title:      req.Title,
		Status:     req.Status,
		Kind:       req.Kind,
		AssigneeID: assigneeID,
		DueAt:      req.DueAt,
	})
	if err != nil {
		s.writeStorageError(w, err, "task")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "task.create", "task", task.ID, task.Title)
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

type updateTaskRequest struct {
	Title      *string    `json:"title"`
	Status     *string    `json:"status"`
	Kind       *string    `json:"kind"`
	AssigneeID *string    `json:"assignee_id"`
	DueAt      *time.Time `json:"due_at"`
}

// handleUpdateTask applies a partial update. Own-records callers may only
// touch tasks assigned to them, and may not reassign.
// PATCH /v1/tasks/{id}
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ownOnly, ok := s.editScope(w, r, perm.CategoryTasks)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if ownOnly {
		existing, err := s.store.GetTask(r.Context(), id.Actor.TenantID, taskID)
		if err != nil {
			s.writeStorageError(w, err, "task")
			return
		}
		if existing.AssigneeID != id.Actor.ID {
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "not the assignee")
			return
		}
		if req.AssigneeID != nil && *req.AssigneeID != id.Actor.ID {
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "cannot reassign")
			return
		}
	}

	task, err := s.store.UpdateTask(r.Context(), id.Actor.TenantID, taskID, storage.TaskUpdate{
		Title:      req.Title,
		Status:     req.Status,
		Kind:       req.Kind,
		AssigneeID: req.AssigneeID,
		DueAt:      req.DueAt,
	})
	if err != nil {
		s.writeStorageError(w, err, "task")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "task.update", "task", task.ID, "")
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}
