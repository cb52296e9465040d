package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/maplecrm/records-api/internal/metrics"
	"github.com/maplecrm/records-api/internal/query"
)

// pageResponse is the uniform list-endpoint body.
type pageResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// pageParams extracts cursor, limit and the collection's equality filters
// from the query string. Dimensions outside the allowed set are rejected so
// typos fail loudly instead of silently returning unfiltered pages.
func pageParams(r *http.Request, allowedDims []string) (filters map[string]string, cursorToken string, limit int, err *APIError) {
	q := r.URL.Query()

	cursorToken = q.Get("cursor")

	if raw := q.Get("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return nil, "", 0, &APIError{Error: ErrCodeInvalidRequest, Message: "limit must be a non-negative integer"}
		}
		limit = n
	}

	allowed := make(map[string]bool, len(allowedDims))
	for _, dim := range allowedDims {
		allowed[dim] = true
	}

	filters = make(map[string]string)
	for key, values := range q {
		if key == "cursor" || key == "limit" {
			continue
		}
		if !allowed[key] {
			return nil, "", 0, &APIError{Error: ErrCodeInvalidRequest, Message: "unknown filter: " + key}
		}
		if len(values) > 0 && values[0] != "" {
			filters[key] = values[0]
		}
	}
	return filters, cursorToken, limit, nil
}

// servePage runs one paginated read and writes the uniform response body.
// filterDims lists the query parameters accepted as equality filters, which
// may be broader than the collection's indexed dimensions; non-indexed
// filters run as residual predicates.
func servePage[T query.Keyed, D any](s *Server, w http.ResponseWriter, r *http.Request, c query.Collection, filterDims []string, src query.Source[T], toDTO func(T) D) {
	filters, cursorToken, limit, apiErr := pageParams(r, filterDims)
	if apiErr != nil {
		WriteError(w, http.StatusBadRequest, apiErr.Error, apiErr.Message)
		return
	}

	rowsScanned := 0
	counted := func(ctx context.Context, indexed *query.Filter, after *query.Cursor, fetchLimit int) ([]T, error) {
		rows, err := src(ctx, indexed, after, fetchLimit)
		rowsScanned = len(rows)
		return rows, err
	}

	page, err := query.Paginate(r.Context(), c, counted, filters, cursorToken, limit)
	if err != nil {
		s.writeStorageError(w, err, c.Name)
		return
	}

	metrics.RecordPage(c.Name, rowsScanned)

	items := make([]D, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, toDTO(rec))
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}
