package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrAlreadyMember is returned when redeeming an invite code for a space the user already belongs to.
var ErrAlreadyMember = fmt.Errorf("%w: already a member of this space", ErrConflict)

// ErrDuplicateInviteCode is returned by the repository when a generated invite code collides.
var ErrDuplicateInviteCode = fmt.Errorf("%w: invite code already in use", ErrConflict)

// Space is a tenant grouping users and rooms under one admin.
// The admin is a member without appearing in UserIDs.
// swagger:model Space
type Space struct {
	ID          string    `json:"id"`
	AdminID     string    `json:"admin_id"`
	UserIDs     []string  `json:"user_ids"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSpace returns a new Space administered by adminID. ID is set by the repository on create.
func NewSpace(adminID, name, description string, capacity int, createdAt, updatedAt time.Time) *Space {
	return &Space{
		AdminID:     adminID,
		UserIDs:     []string{},
		Name:        name,
		Description: description,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// SpacePatch carries the fields of a partial space update.
type SpacePatch struct {
	Name        *string
	Description *string
	Capacity    *int
}

// SpaceRepository defines the interface for space and membership storage.
type SpaceRepository interface {
	Create(ctx context.Context, space *Space) error
	GetByID(ctx context.Context, id string) (*Space, error)
	GetByInviteCode(ctx context.Context, code string) (*Space, error)
	// ListByMember returns spaces where userID is the admin or a member.
	ListByMember(ctx context.Context, userID string) ([]*Space, error)
	Update(ctx context.Context, space *Space) error
	SetInviteCode(ctx context.Context, spaceID, code string) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, spaceID, userID string) error
	RemoveMember(ctx context.Context, spaceID, userID string) error
}

// SpaceService defines the business logic for spaces and membership.
type SpaceService interface {
	Create(ctx context.Context, userID string, space *Space) error
	List(ctx context.Context, userID string) ([]*Space, error)
	Get(ctx context.Context, id, userID string) (*Space, error)
	Update(ctx context.Context, id, userID string, patch SpacePatch) (*Space, error)
	Delete(ctx context.Context, id, userID string) error
	Join(ctx context.Context, inviteCode, userID string) (*Space, error)
	Leave(ctx context.Context, id, userID string) error
	RegenerateInviteCode(ctx context.Context, id, userID string) (*Space, error)
}
