package query

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

// TestCursorRoundTrip verifies decode(encode(time, id)) == (time, id).
func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		at   time.Time
		id   string
	}{
		{"epoch", time.UnixMilli(0).UTC(), "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
		{"recent", time.UnixMilli(1714000000123).UTC(), "01HVQ5W9K3"},
		{"id with colon", time.UnixMilli(50).UTC(), "a:b"},
		{"far future", time.UnixMilli(1<<41).UTC(), "zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token := EncodeCursor(tt.at, tt.id)
			cur, err := DecodeCursor(token)
			if err != nil {
				t.Fatalf("DecodeCursor failed: %v", err)
			}
			if !cur.CreatedAt.Equal(tt.at) {
				t.Errorf("CreatedAt = %v, want %v", cur.CreatedAt, tt.at)
			}
			if cur.ID != tt.id {
				t.Errorf("ID = %q, want %q", cur.ID, tt.id)
			}
		})
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	t.Parallel()

	cur, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("DecodeCursor(\"\") failed: %v", err)
	}
	if cur != nil {
		t.Errorf("expected nil cursor for empty token, got %+v", cur)
	}
}

// TestDecodeCursorMalformed verifies that tokens failing to decode into a
// (time, id) pair surface ErrMalformedCursor instead of silently matching
// everything or nothing.
func TestDecodeCursorMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"no separator", base64.RawURLEncoding.EncodeToString([]byte("1234567890"))},
		{"non-numeric timestamp", base64.RawURLEncoding.EncodeToString([]byte("abc:id1"))},
		{"empty id", base64.RawURLEncoding.EncodeToString([]byte("1234:"))},
		{"empty payload", base64.RawURLEncoding.EncodeToString([]byte(""))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeCursor(tt.token)
			if !errors.Is(err, ErrMalformedCursor) {
				t.Errorf("expected ErrMalformedCursor, got %v", err)
			}
		})
	}
}

// TestCursorTokenIsURLSafe verifies the token survives use as a query
// parameter without escaping.
func TestCursorTokenIsURLSafe(t *testing.T) {
	t.Parallel()

	token := EncodeCursor(time.UnixMilli(1714000000123), "01HVQ5W9K3+/=")
	for _, ch := range token {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			t.Fatalf("token contains non-URL-safe character %q: %s", ch, token)
		}
	}
}
