// Package scheduling holds the pure interval algorithms behind bookings: overlap detection,
// slot generation, availability and occupancy. Nothing here touches storage.
package scheduling

import "roombook/internal/domain"

// FindOverlap returns the first booking in existing whose interval intersects candidate,
// skipping the booking with ID excludeID. It returns nil when there is no conflict.
func FindOverlap(candidate domain.Interval, existing []*domain.Booking, excludeID string) *domain.Booking {
	for _, b := range existing {
		if b == nil || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			return b
		}
	}
	return nil
}

// HasOverlap reports whether candidate intersects any booking in existing other than excludeID.
func HasOverlap(candidate domain.Interval, existing []*domain.Booking, excludeID string) bool {
	return FindOverlap(candidate, existing, excludeID) != nil
}

// CheckAvailable returns an *domain.OverlapError for roomID if candidate conflicts with existing.
func CheckAvailable(roomID string, candidate domain.Interval, existing []*domain.Booking, excludeID string) error {
	if HasOverlap(candidate, existing, excludeID) {
		return &domain.OverlapError{RoomID: roomID, Start: candidate.Start, End: candidate.End}
	}
	return nil
}
