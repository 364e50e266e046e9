package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func TestNewInterval(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid", at(9, 0), at(10, 0), false},
		{"zero duration", at(9, 0), at(9, 0), true},
		{"reversed", at(10, 0), at(9, 0), true},
		{"missing start", time.Time{}, at(9, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := NewInterval(tt.start, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Hour, iv.Duration())
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
		{"partial overlap", Interval{at(8, 30), at(9, 30)}, Interval{at(9, 0), at(10, 0)}, true},
		{"contained", Interval{at(9, 15), at(9, 45)}, Interval{at(9, 0), at(10, 0)}, true},
		{"touching end to start", Interval{at(8, 0), at(9, 0)}, Interval{at(9, 0), at(10, 0)}, false},
		{"disjoint", Interval{at(6, 0), at(7, 0)}, Interval{at(9, 0), at(10, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestInterval_Overlaps_self(t *testing.T) {
	for h := 0; h < 23; h++ {
		iv := Interval{at(h, 0), at(h+1, 0)}
		assert.True(t, iv.Overlaps(iv))
	}
}

func TestInterval_CoversInstant_is_closed(t *testing.T) {
	iv := Interval{at(9, 0), at(10, 0)}
	assert.True(t, iv.CoversInstant(at(9, 0)))
	assert.True(t, iv.CoversInstant(at(9, 30)))
	assert.True(t, iv.CoversInstant(at(10, 0)), "end bound is inclusive for occupancy")
	assert.False(t, iv.CoversInstant(at(10, 1)))
	assert.False(t, iv.CoversInstant(at(8, 59)))
}

func TestOverlapError(t *testing.T) {
	err := error(&OverlapError{RoomID: "room-1", Start: at(8, 30), End: at(9, 30)})
	assert.True(t, errors.Is(err, ErrOverlap))
	assert.Contains(t, err.Error(), "room-1")
	assert.Contains(t, err.Error(), "2024-01-01T08:30:00Z")
	assert.Contains(t, err.Error(), "2024-01-01T09:30:00Z")

	var oe *OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "room-1", oe.RoomID)
}

func TestConflictSentinels(t *testing.T) {
	assert.True(t, errors.Is(ErrAlreadyMember, ErrConflict))
	assert.True(t, errors.Is(ErrDuplicateEmail, ErrConflict))
	assert.False(t, errors.Is(ErrAlreadyMember, ErrDuplicateEmail))
}
