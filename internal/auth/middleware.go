package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maplecrm/records-api/internal/metrics"
)

// Middleware returns chi-compatible middleware that validates the bearer
// secret and attaches the resolved identity to the request context.
// Permission checks are per-route and happen in the handlers.
func Middleware(v *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := extractBearerToken(r)
			if secret == "" {
				metrics.RecordAuthFailure("missing_credential")
				writeAuthError(w, http.StatusUnauthorized, "not_authenticated", "missing credential")
				return
			}

			id, err := v.Validate(r.Context(), secret)
			if err != nil {
				if err == ErrNotAuthenticated {
					metrics.RecordAuthFailure("invalid_credential")
					writeAuthError(w, http.StatusUnauthorized, "not_authenticated", "invalid credential")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// extractBearerToken gets the secret from "Authorization: Bearer <secret>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
