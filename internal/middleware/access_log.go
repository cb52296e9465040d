package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maplecrm/records-api/internal/logging"
)

// accessRecorder wraps http.ResponseWriter to capture the status code.
type accessRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *accessRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *accessRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// AccessLog returns middleware that logs one line per request with the
// Authorization header masked. Requests are logged at info level after
// completion.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &accessRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			logger.Info("request",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"authorization", logging.MaskHeader("Authorization", r.Header.Get("Authorization")),
			)
		})
	}
}
