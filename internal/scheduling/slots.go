package scheduling

import (
	"time"

	"roombook/internal/domain"
)

// Grid bounds.
const (
	// MaxSlots bounds the size of a generated grid.
	MaxSlots = 10000
	// MaxIntervalMinutes is the widest slot, one day.
	MaxIntervalMinutes = 24 * 60
)

// AlignStart rounds t up to the next boundary that is a multiple of intervalMinutes past the
// hour. Seconds and sub-seconds are dropped first, so 09:30:45 aligns to 09:30 for a
// 30-minute grid while 09:05 aligns to 09:30.
func AlignStart(t time.Time, intervalMinutes int) time.Time {
	aligned := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	if rem := t.Minute() % intervalMinutes; rem != 0 {
		aligned = aligned.Add(time.Duration(intervalMinutes-rem) * time.Minute)
	}
	return aligned
}

// GenerateSlots returns consecutive slots of exactly intervalMinutes width, starting at the
// aligned rangeStart. Only whole slots ending at or before rangeEnd are emitted; the result
// is empty when the aligned start is not before rangeEnd.
func GenerateSlots(rangeStart, rangeEnd time.Time, intervalMinutes int) ([]domain.TimeSlot, error) {
	if intervalMinutes <= 0 {
		return nil, domain.Invalid("interval must be a positive number of minutes")
	}
	if intervalMinutes > MaxIntervalMinutes {
		return nil, domain.Invalid("interval must be at most %d minutes", MaxIntervalMinutes)
	}
	step := time.Duration(intervalMinutes) * time.Minute
	start := AlignStart(rangeStart, intervalMinutes)
	if !start.Before(rangeEnd) {
		return []domain.TimeSlot{}, nil
	}
	n := int64(rangeEnd.Sub(start) / step)
	if n > MaxSlots {
		return nil, domain.Invalid("range produces %d slots, the maximum is %d", n, MaxSlots)
	}

	slots := make([]domain.TimeSlot, 0, n)
	for cur := start; cur.Before(rangeEnd); cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(rangeEnd) {
			break
		}
		slots = append(slots, domain.TimeSlot{Start: cur, End: end})
	}
	return slots, nil
}
