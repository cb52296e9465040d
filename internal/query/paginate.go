package query

import (
	"context"
	"time"
)

// OverReadFactor multiplies the requested page size when residual filters
// are in play, absorbing the expected drop rate without a second fetch.
const OverReadFactor = 4

// Keyed is implemented by any record type exposed through the pagination
// core.
type Keyed interface {
	// PageKey returns the composite sort key: creation time (millisecond
	// precision) and the tie-breaking record id.
	PageKey() (createdAt time.Time, id string)
	// DimValue returns the record's value for a filterable dimension, or
	// "" when the dimension does not apply.
	DimValue(dim string) string
}

// Page is one result page.
type Page[T Keyed] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// Source fetches up to fetchLimit records ordered (createdAt desc, id desc)
// within the caller's tenant scope, restricted to the indexed filter when
// non-nil, starting strictly after the cursor position when non-nil.
type Source[T Keyed] func(ctx context.Context, indexed *Filter, after *Cursor, fetchLimit int) ([]T, error)

// Paginate executes one page of a cursor-paginated read.
//
// The store scan seeks past the cursor position; the cursor predicate is
// nevertheless re-applied in memory together with the residual filters, so
// the (createdAt desc, id desc) composite ordering is the sole tie-break
// rule regardless of what the source returns.
//
// Cost is bounded at one fetch per call. When residual filters are highly
// selective the single over-read window can run dry before limit+1 rows
// survive, in which case the page reports HasMore=false even though more
// matching rows may exist beyond the window. That under-reporting is a
// deliberate tradeoff against unbounded re-fetching.
func Paginate[T Keyed](ctx context.Context, c Collection, src Source[T], filters map[string]string, cursorToken string, limit int) (Page[T], error) {
	cursor, err := DecodeCursor(cursorToken)
	if err != nil {
		return Page[T]{}, err
	}

	indexed, residual := c.SelectIndex(filters)
	limit = c.ClampLimit(limit)

	k := 1
	if len(residual) > 0 {
		k = OverReadFactor
	}
	fetchLimit := limit*k + 1

	rows, err := src(ctx, indexed, cursor, fetchLimit)
	if err != nil {
		return Page[T]{}, err
	}

	filtered := make([]T, 0, limit+1)
scan:
	for _, rec := range rows {
		if cursor != nil && !beforeCursor(rec, cursor) {
			continue
		}
		for _, f := range residual {
			if rec.DimValue(f.Dim) != f.Value {
				continue scan
			}
		}
		filtered = append(filtered, rec)
	}

	hasMore := len(filtered) > limit
	if hasMore {
		filtered = filtered[:limit]
	}

	page := Page[T]{Items: filtered, HasMore: hasMore}
	if hasMore {
		last := filtered[len(filtered)-1]
		createdAt, id := last.PageKey()
		page.NextCursor = EncodeCursor(createdAt, id)
	}
	return page, nil
}

// beforeCursor reports whether rec sorts strictly after the cursor position
// in (createdAt desc, id desc) order, i.e. createdAt < cursor.time OR
// (createdAt == cursor.time AND id < cursor.id).
func beforeCursor(rec Keyed, cur *Cursor) bool {
	createdAt, id := rec.PageKey()
	if createdAt.Before(cur.CreatedAt) {
		return true
	}
	return createdAt.Equal(cur.CreatedAt) && id < cur.ID
}
