package auth

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const identityKey ctxKey = iota

// WithIdentity attaches a validated identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the validated identity from context.
// Returns nil when the request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	if v := ctx.Value(identityKey); v != nil {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}
