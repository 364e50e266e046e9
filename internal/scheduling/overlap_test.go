package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/domain"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func booking(id, roomID string, start, end time.Time) *domain.Booking {
	return &domain.Booking{ID: id, RoomID: roomID, PrimaryUserID: "u1", StartTime: start, EndTime: end}
}

func TestFindOverlap(t *testing.T) {
	existing := []*domain.Booking{booking("b1", "r1", at(9, 0), at(10, 0))}

	tests := []struct {
		name      string
		candidate domain.Interval
		excludeID string
		wantID    string
	}{
		{"ends where existing starts", domain.Interval{Start: at(8, 0), End: at(9, 0)}, "", ""},
		{"starts where existing ends", domain.Interval{Start: at(10, 0), End: at(11, 0)}, "", ""},
		{"straddles start", domain.Interval{Start: at(8, 30), End: at(9, 30)}, "", "b1"},
		{"inside", domain.Interval{Start: at(9, 10), End: at(9, 20)}, "", "b1"},
		{"covers", domain.Interval{Start: at(8, 0), End: at(11, 0)}, "", "b1"},
		{"self excluded on update", domain.Interval{Start: at(9, 30), End: at(10, 30)}, "b1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindOverlap(tt.candidate, existing, tt.excludeID)
			if tt.wantID == "" {
				assert.Nil(t, got)
				assert.False(t, HasOverlap(tt.candidate, existing, tt.excludeID))
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFindOverlap_empty(t *testing.T) {
	assert.Nil(t, FindOverlap(domain.Interval{Start: at(9, 0), End: at(10, 0)}, nil, ""))
}

func TestCheckAvailable(t *testing.T) {
	existing := []*domain.Booking{booking("b1", "r1", at(9, 0), at(10, 0))}

	require.NoError(t, CheckAvailable("r1", domain.Interval{Start: at(8, 0), End: at(9, 0)}, existing, ""))

	err := CheckAvailable("r1", domain.Interval{Start: at(8, 30), End: at(9, 30)}, existing, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOverlap))
	var oe *domain.OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "r1", oe.RoomID)
	assert.Equal(t, at(8, 30), oe.Start)
	assert.Equal(t, at(9, 30), oe.End)
}
