package scheduling

import (
	"time"

	"roombook/internal/domain"
)

// MostUsedRoom returns the room with the strictly highest booking count. On a tie the room
// encountered first in bookings wins. ok is false for an empty input.
func MostUsedRoom(bookings []*domain.Booking) (roomID string, ok bool) {
	counts := make(map[string]int)
	var order []string
	for _, b := range bookings {
		if _, seen := counts[b.RoomID]; !seen {
			order = append(order, b.RoomID)
		}
		counts[b.RoomID]++
	}
	best := 0
	for _, id := range order {
		if counts[id] > best {
			best = counts[id]
			roomID = id
		}
	}
	return roomID, best > 0
}

// ActiveAt returns the bookings whose closed range [start, end] contains instant.
func ActiveAt(bookings []*domain.Booking, instant time.Time) []*domain.Booking {
	var active []*domain.Booking
	for _, b := range bookings {
		if b.Interval().CoversInstant(instant) {
			active = append(active, b)
		}
	}
	return active
}

// RoomsInUse counts distinct rooms with a booking active at instant.
func RoomsInUse(bookings []*domain.Booking, instant time.Time) int {
	rooms := make(map[string]struct{})
	for _, b := range ActiveAt(bookings, instant) {
		rooms[b.RoomID] = struct{}{}
	}
	return len(rooms)
}

// UsersInRooms counts the distinct organizers and the distinct invitees of the bookings
// active at instant. Total is the sum of both counts.
func UsersInRooms(bookings []*domain.Booking, instant time.Time) domain.UserPresence {
	primary := make(map[string]struct{})
	invited := make(map[string]struct{})
	for _, b := range ActiveAt(bookings, instant) {
		primary[b.PrimaryUserID] = struct{}{}
		for _, id := range b.InvitedUserIDs {
			invited[id] = struct{}{}
		}
	}
	return domain.UserPresence{
		Primary: len(primary),
		Invited: len(invited),
		Total:   len(primary) + len(invited),
	}
}
