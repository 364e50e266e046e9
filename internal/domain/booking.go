package domain

import (
	"context"
	"time"
)

// Booking is a reservation of a room for [StartTime, EndTime).
// swagger:model Booking
type Booking struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	PrimaryUserID  string    `json:"primary_user_id"`
	InvitedUserIDs []string  `json:"invited_user_ids"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewBooking returns a new Booking. ID is set by the repository on create.
func NewBooking(roomID, primaryUserID string, invited []string, title, description string, start, end, createdAt, updatedAt time.Time) *Booking {
	if invited == nil {
		invited = []string{}
	}
	return &Booking{
		RoomID:         roomID,
		PrimaryUserID:  primaryUserID,
		InvitedUserIDs: invited,
		Title:          title,
		Description:    description,
		StartTime:      start,
		EndTime:        end,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// Interval returns the booking's reserved range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// IsInvited reports whether userID is among the invitees.
func (b *Booking) IsInvited(userID string) bool {
	for _, id := range b.InvitedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// BookingPatch carries the fields of a partial update. Nil fields are unchanged.
type BookingPatch struct {
	RoomID         *string
	PrimaryUserID  *string
	InvitedUserIDs *[]string
	Title          *string
	Description    *string
	StartTime      *time.Time
	EndTime        *time.Time
}

// BookingFilter narrows the caller's visible bookings. Nil fields do not filter.
type BookingFilter struct {
	PrimaryUser *bool
	InvitedUser *bool
	From        *time.Time
	To          *time.Time
}

// RoomBookings groups the booked ranges of one room.
// swagger:model RoomBookings
type RoomBookings struct {
	RoomID   string     `json:"room_id"`
	Bookings []Interval `json:"bookings"`
}

// RoomSlots lists the free slots of one room.
// swagger:model RoomSlots
type RoomSlots struct {
	RoomID    string     `json:"room_id"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// UserPresence counts distinct users in active bookings.
// Total is Primary + Invited, so a user in both sets is counted twice.
// swagger:model UserPresence
type UserPresence struct {
	Primary int `json:"primary_count"`
	Invited int `json:"invited_count"`
	Total   int `json:"total"`
}

// AvailabilityQuery is the input of an availability report.
type AvailabilityQuery struct {
	From            time.Time
	To              time.Time
	IntervalMinutes int
	At              time.Time
}

// AvailabilityReport is the free/busy summary of the caller's rooms.
// swagger:model AvailabilityReport
type AvailabilityReport struct {
	AvailableTimeSlots   []RoomSlots  `json:"availableTimeSlots"`
	MostUsedRoom         *string      `json:"mostUsedRoom"`
	NumberOfRoomsInUse   int          `json:"numberOfRoomsInUse"`
	NumberOfUsersInRooms UserPresence `json:"numberOfUsersInRooms"`
}

// BookingTx is the view of booking storage available inside a room transaction.
type BookingTx interface {
	// GetForUpdate reads a booking and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Booking, error)
	ListByRoomID(ctx context.Context, roomID string) ([]*Booking, error)
	Create(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByRoomIDs(ctx context.Context, roomIDs []string) ([]*Booking, error)
	Delete(ctx context.Context, id string) error
	// InRoomTx runs fn while holding an exclusive lock on roomID. Writes made through tx
	// commit only if fn returns nil. Returns ErrUnknownRoom if the room does not exist.
	InRoomTx(ctx context.Context, roomID string, fn func(tx BookingTx) error) error
}

// BookingService defines the business logic for bookings.
type BookingService interface {
	List(ctx context.Context, userID string, filter BookingFilter) ([]*Booking, error)
	Get(ctx context.Context, id, userID string) (*Booking, error)
	ListPerRoom(ctx context.Context, userID string, from time.Time, to *time.Time) ([]RoomBookings, error)
	Availability(ctx context.Context, userID string, q AvailabilityQuery) (*AvailabilityReport, error)
	Create(ctx context.Context, userID string, b *Booking) error
	Update(ctx context.Context, id, userID string, patch BookingPatch) (*Booking, error)
	Delete(ctx context.Context, id, userID string) (*Booking, error)
}

// Booking event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// BookingEvent is published after a booking write commits.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	RoomID         string    `json:"room_id"`
	PrimaryUserID  string    `json:"primary_user_id"`
	InvitedUserIDs []string  `json:"invited_user_ids"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of the given type.
func NewBookingEvent(eventType string, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		RoomID:         b.RoomID,
		PrimaryUserID:  b.PrimaryUserID,
		InvitedUserIDs: b.InvitedUserIDs,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		OccurredAt:     at,
	}
}

// BookingEventPublisher delivers booking events to downstream consumers.
type BookingEventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
