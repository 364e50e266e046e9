package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOverlap is matched by every *OverlapError.
	ErrOverlap = errors.New("booking overlaps an existing booking")

	// ErrUnknownRoom is returned when a booking references a room outside the caller's spaces.
	ErrUnknownRoom = errors.New("could not find room")
)

// UnknownRoom wraps ErrUnknownRoom with the requested room ID.
func UnknownRoom(roomID string) error {
	return fmt.Errorf("%w with id: %s", ErrUnknownRoom, roomID)
}

// UnknownUser wraps ErrNotFound with the missing user ID.
func UnknownUser(userID string) error {
	return fmt.Errorf("%w: could not find user with id: %s", ErrNotFound, userID)
}

// OverlapError reports the room and requested range of a rejected booking.
type OverlapError struct {
	RoomID string
	Start  time.Time
	End    time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("booking overlaps an existing booking in room %s between %s and %s",
		e.RoomID, e.Start.UTC().Format(time.RFC3339), e.End.UTC().Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrOverlap) match any OverlapError.
func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlap
}

// Invalid wraps ErrInvalidInput with a human-readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
