package domain

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// NewInterval returns the interval [start, end) or ErrInvalidInput if start is not before end.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate enforces Start < End. Zero-duration intervals are rejected.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return Invalid("start_time and end_time are required")
	}
	if !i.Start.Before(i.End) {
		return Invalid("start_time must be before end_time")
	}
	return nil
}

// Overlaps reports whether the two half-open intervals intersect.
// Intervals that only touch (i.End == other.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// CoversInstant reports whether t lies in the closed range [Start, End].
// Occupancy counts use this; overlap detection never does.
func (i Interval) CoversInstant(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// TimeSlot is one fixed-width window of a generated availability grid.
// swagger:model TimeSlot
type TimeSlot struct {
	Start time.Time `json:"available_start_time"`
	End   time.Time `json:"available_end_time"`
}

// Interval returns the slot as a half-open interval.
func (s TimeSlot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}
