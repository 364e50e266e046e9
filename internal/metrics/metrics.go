// Package metrics exposes Prometheus counters for booking traffic.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"roombook/internal/domain"
)

const namespace = "roombook"

// Write operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Write outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeOverlap   = "overlap"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

// Metrics holds the collectors used by services and middleware.
type Metrics struct {
	// BookingWrites counts booking writes by operation and outcome.
	BookingWrites *prometheus.CounterVec

	// AvailabilityQueries counts availability reports served.
	AvailabilityQueries prometheus.Counter

	// SlotsGenerated observes the number of slots per availability query.
	SlotsGenerated prometheus.Histogram

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_writes_total",
				Help:      "Total number of booking writes by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		AvailabilityQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_queries_total",
				Help:      "Total number of availability reports served",
			},
		),
		SlotsGenerated: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "availability_slots",
				Help:      "Number of slots generated per availability query",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"backend"},
		),
	}
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrOverlap):
		return OutcomeOverlap
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnknownRoom):
		return OutcomeForbidden
	default:
		return OutcomeError
	}
}

// ObserveWrite records one booking write. A nil receiver is a no-op.
func (m *Metrics) ObserveWrite(op string, err error) {
	if m == nil {
		return
	}
	m.BookingWrites.WithLabelValues(op, Outcome(err)).Inc()
}

// ObserveAvailability records one availability report of slots slots.
func (m *Metrics) ObserveAvailability(slots int) {
	if m == nil {
		return
	}
	m.AvailabilityQueries.Inc()
	m.SlotsGenerated.Observe(float64(slots))
}

// IncRateLimited increments the rejection counter for backend.
func (m *Metrics) IncRateLimited(backend string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(backend).Inc()
}
