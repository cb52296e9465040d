package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/metrics"
	"github.com/maplecrm/records-api/internal/query"
	"github.com/maplecrm/records-api/internal/storage"
)

// Standard error codes for API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body or parameter.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeMalformedCursor indicates a pagination token that does not decode.
	ErrCodeMalformedCursor = "malformed_cursor"

	// ErrCodeNotAuthenticated indicates a missing or invalid credential.
	ErrCodeNotAuthenticated = "not_authenticated"

	// ErrCodeForbidden indicates the caller's effective level is too weak.
	ErrCodeForbidden = "forbidden"

	// ErrCodeNotFound indicates a resource was not found in the caller's tenant.
	ErrCodeNotFound = "not_found"

	// ErrCodeDuplicate indicates a uniqueness conflict.
	ErrCodeDuplicate = "duplicate"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(APIError{Error: code, Message: message})
	if encErr != nil {
		// Response already started, nothing we can do
		_ = encErr
	}
}

// writeStorageError maps an error from the storage or query layer onto the
// response envelope. Unrecognized errors are logged and presented as 500.
func (s *Server) writeStorageError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, context+" not found")
	case errors.Is(err, storage.ErrDuplicate):
		WriteError(w, http.StatusConflict, ErrCodeDuplicate, context+" already exists")
	case errors.Is(err, query.ErrMalformedCursor):
		WriteError(w, http.StatusBadRequest, ErrCodeMalformedCursor, "cursor does not decode")
	default:
		s.logger.Error("storage error", "context", context, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// requireLevel funnels every permission check. On denial it writes the 403
// envelope and records the failure; callers bail on false.
func (s *Server) requireLevel(w http.ResponseWriter, r *http.Request, required routeRequirement) *auth.Identity {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeNotAuthenticated, "missing credential")
		return nil
	}
	if err := s.validator.Require(id, required.category, required.level); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			metrics.RecordAuthFailure("permission_denied")
			WriteError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permission")
			return nil
		}
		s.logger.Error("permission check error", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return nil
	}
	return id
}
