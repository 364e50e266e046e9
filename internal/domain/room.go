package domain

import (
	"context"
	"time"
)

// Room is a bookable resource owned by exactly one Space.
// swagger:model Room
type Room struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"space_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoom returns a new Room with the given fields. ID is typically set by the repository on create.
func NewRoom(spaceID, name, description string, capacity int, createdAt, updatedAt time.Time) *Room {
	return &Room{
		SpaceID:     spaceID,
		Name:        name,
		Description: description,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// RoomPatch carries the fields of a partial room update.
type RoomPatch struct {
	SpaceID     *string
	Name        *string
	Description *string
	Capacity    *int
}

// RoomRepository defines the interface for room storage.
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	ListBySpaceIDs(ctx context.Context, spaceIDs []string) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id string) error
}

// RoomService defines the business logic for rooms.
type RoomService interface {
	Create(ctx context.Context, userID string, room *Room) error
	List(ctx context.Context, userID string) ([]*Room, error)
	Get(ctx context.Context, id, userID string) (*Room, error)
	Update(ctx context.Context, id, userID string, patch RoomPatch) (*Room, error)
	Delete(ctx context.Context, id, userID string) error
}
