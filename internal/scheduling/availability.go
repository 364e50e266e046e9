package scheduling

import "roombook/internal/domain"

// FreeSlots returns the slots that intersect none of booked, in their original order.
func FreeSlots(slots []domain.TimeSlot, booked []domain.Interval) []domain.TimeSlot {
	free := make([]domain.TimeSlot, 0, len(slots))
	for _, s := range slots {
		iv := s.Interval()
		taken := false
		for _, b := range booked {
			if iv.Overlaps(b) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, s)
		}
	}
	return free
}

// ComputeAvailability subtracts each room's booked intervals from slots.
// Only rooms present in booked appear in the result; a room with no bookings is absent
// rather than fully free. Use RoomAvailability when every room must be listed.
func ComputeAvailability(slots []domain.TimeSlot, booked map[string][]domain.Interval) map[string][]domain.TimeSlot {
	out := make(map[string][]domain.TimeSlot, len(booked))
	for roomID, intervals := range booked {
		out[roomID] = FreeSlots(slots, intervals)
	}
	return out
}

// RoomAvailability lists free slots for every room in roster, in roster order. Rooms without
// booked intervals get the full slot sequence.
func RoomAvailability(roster []string, slots []domain.TimeSlot, booked map[string][]domain.Interval) []domain.RoomSlots {
	out := make([]domain.RoomSlots, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, roomID := range roster {
		if _, dup := seen[roomID]; dup {
			continue
		}
		seen[roomID] = struct{}{}
		free := FreeSlots(slots, booked[roomID])
		out = append(out, domain.RoomSlots{RoomID: roomID, TimeSlots: free})
	}
	return out
}

// BookedIntervals groups the intervals of bookings by room, keeping only rooms in allowed.
// A nil allowed set keeps every room.
func BookedIntervals(bookings []*domain.Booking, allowed map[string]struct{}) map[string][]domain.Interval {
	out := make(map[string][]domain.Interval)
	for _, b := range bookings {
		if allowed != nil {
			if _, ok := allowed[b.RoomID]; !ok {
				continue
			}
		}
		out[b.RoomID] = append(out[b.RoomID], b.Interval())
	}
	return out
}
