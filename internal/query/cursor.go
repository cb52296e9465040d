// Package query implements cursor-paginated reads over time-ordered record
// sets: an opaque cursor codec, per-collection index selection, and the
// over-read/residual-filter/trim loop that turns an indexed scan into a
// correct page.
package query

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedCursor indicates a pagination token that does not decode into
// a valid (time, id) pair. It must surface as a client error, never as an
// empty result or as the first page.
var ErrMalformedCursor = errors.New("query: malformed cursor")

// Cursor is the decoded position of the last item of a previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor produces an opaque, URL-safe token from a (time, id) pair.
// Timestamps are carried at millisecond precision, matching storage.
func EncodeCursor(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixMilli(), 10) + ":" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor token. An empty token decodes to nil,
// meaning "start from the most recent record". Any token that does not
// round-trip into a (time, id) pair returns ErrMalformedCursor.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}
	millisPart, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing id component", ErrMalformedCursor)
	}
	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric timestamp", ErrMalformedCursor)
	}
	return &Cursor{CreatedAt: time.UnixMilli(millis).UTC(), ID: id}, nil
}
