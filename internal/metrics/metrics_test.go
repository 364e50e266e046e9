package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"roombook/internal/domain"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"overlap", &domain.OverlapError{RoomID: "r1", Start: time.Now(), End: time.Now()}, OutcomeOverlap},
		{"forbidden", domain.ErrForbidden, OutcomeForbidden},
		{"unknown room", domain.ErrUnknownRoom, OutcomeForbidden},
		{"other", errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestMetrics_ObserveWrite(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveWrite(OpCreate, nil)
	m.ObserveWrite(OpCreate, nil)
	m.ObserveWrite(OpCreate, &domain.OverlapError{RoomID: "r1"})
	m.ObserveWrite(OpDelete, domain.ErrForbidden)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingWrites.WithLabelValues(OpCreate, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingWrites.WithLabelValues(OpCreate, OutcomeOverlap)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingWrites.WithLabelValues(OpDelete, OutcomeForbidden)))
}

func TestMetrics_ObserveAvailability(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAvailability(48)
	m.ObserveAvailability(0)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AvailabilityQueries))
}

func TestMetrics_nil_receiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveWrite(OpUpdate, nil)
		m.ObserveAvailability(1)
		m.IncRateLimited("memory")
	})
}
