// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"errors"

	"shopledger-backend/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopledger_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopledger_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LedgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopledger_ledger_operations_total",
		Help: "Daily record operations by operation and outcome.",
	}, []string{"op", "outcome"})
)

// ObserveLedger counts one ledger operation, labelling the outcome by error kind.
func ObserveLedger(op string, err error) {
	LedgerOps.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome maps an error to a short, bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateRecord):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrMissingTarget):
		return "invalid"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}
