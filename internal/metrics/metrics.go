// Package metrics provides Prometheus metrics collection for the API.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics - used by the application.
	// Using atomic.Pointer for lock-free initialization checks on hot path metrics.
	requestsTotal     atomic.Pointer[prometheus.CounterVec]
	requestDuration   atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal atomic.Pointer[prometheus.CounterVec]
	pagesServedTotal  atomic.Pointer[prometheus.CounterVec]
	pageRowsScanned   atomic.Pointer[prometheus.HistogramVec]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "records",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "records",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "records",
			Subsystem: "api",
			Name:      "auth_failures_total",
			Help:      "Total number of authentication and authorization failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	pagesServedTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "records",
			Subsystem: "api",
			Name:      "pages_served_total",
			Help:      "Total number of cursor pages served per collection",
		},
		[]string{"collection"},
	)
	if err := reg.Register(pagesServedTotalVec); err != nil {
		return fmt.Errorf("failed to register pagesServedTotal: %w", err)
	}

	pageRowsScannedVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "records",
			Subsystem: "api",
			Name:      "page_rows_scanned",
			Help:      "Rows fetched from storage per page request, including over-read",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"collection"},
	)
	if err := reg.Register(pageRowsScannedVec); err != nil {
		return fmt.Errorf("failed to register pageRowsScanned: %w", err)
	}

	// Store metrics in atomics for lock-free access in record functions
	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	pagesServedTotal.Store(pagesServedTotalVec)
	pageRowsScanned.Store(pageRowsScannedVec)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status code.
// The path should be normalized (e.g., "/v1/leads/:id" instead of "/v1/leads/01J...").
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records the latency for a request in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter for the given reason.
// Common reasons: "invalid_credential", "permission_denied", "missing_credential"
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordPage records one served page and the number of rows the storage
// scan produced for it.
func RecordPage(collection string, rowsScanned int) {
	if counter := pagesServedTotal.Load(); counter != nil {
		counter.WithLabelValues(collection).Inc()
	}
	if histogram := pageRowsScanned.Load(); histogram != nil {
		histogram.WithLabelValues(collection).Observe(float64(rowsScanned))
	}
}

// Handler returns an HTTP handler for Prometheus metrics in text format.
// This handler should be registered at /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
