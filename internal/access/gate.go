// Package access decides who may see and change bookings, rooms and spaces.
//
// The predicates are pure. Gate resolves the caller's reachable spaces and rooms through the
// repositories on each call and keeps no state between requests.
package access

import (
	"context"
	"errors"
	"fmt"

	"roombook/internal/domain"
)

// CanAccessBooking reports whether userID organizes or is invited to b.
func CanAccessBooking(b *domain.Booking, userID string) bool {
	if b == nil || userID == "" {
		return false
	}
	return b.PrimaryUserID == userID || b.IsInvited(userID)
}

// IsSpaceAdmin reports whether userID administers space.
func IsSpaceAdmin(space *domain.Space, userID string) bool {
	return space != nil && userID != "" && space.AdminID == userID
}

// IsSpaceMember reports whether userID is the admin or a listed member of space.
func IsSpaceMember(space *domain.Space, userID string) bool {
	if IsSpaceAdmin(space, userID) {
		return true
	}
	if space == nil || userID == "" {
		return false
	}
	for _, id := range space.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// EffectiveMembers returns the admin followed by the listed members, without duplicates.
func EffectiveMembers(space *domain.Space) []string {
	if space == nil {
		return nil
	}
	out := make([]string, 0, len(space.UserIDs)+1)
	seen := make(map[string]struct{}, len(space.UserIDs)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(space.AdminID)
	for _, id := range space.UserIDs {
		add(id)
	}
	return out
}

// RoomAdminRequest identifies the space whose admin may act on a room. SpaceID is used when
// set (creating a room, or moving one); otherwise the space is resolved from RoomID.
type RoomAdminRequest struct {
	RoomID  string
	SpaceID string
}

// Gate answers scope questions that need storage lookups.
type Gate struct {
	spaceRepo domain.SpaceRepository
	roomRepo  domain.RoomRepository
}

// NewGate returns a Gate backed by the given repositories.
func NewGate(spaceRepo domain.SpaceRepository, roomRepo domain.RoomRepository) *Gate {
	return &Gate{spaceRepo: spaceRepo, roomRepo: roomRepo}
}

// VisibleSpaces returns the spaces userID administers or belongs to.
func (g *Gate) VisibleSpaces(ctx context.Context, userID string) ([]*domain.Space, error) {
	spaces, err := g.spaceRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

// VisibleRooms returns every room in the spaces userID can see.
func (g *Gate) VisibleRooms(ctx context.Context, userID string) ([]*domain.Room, error) {
	spaces, err := g.VisibleSpaces(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(spaces) == 0 {
		return []*domain.Room{}, nil
	}
	ids := make([]string, 0, len(spaces))
	for _, s := range spaces {
		ids = append(ids, s.ID)
	}
	rooms, err := g.roomRepo.ListBySpaceIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// VisibleRoomIDs returns the IDs of VisibleRooms in repository order.
func (g *Gate) VisibleRoomIDs(ctx context.Context, userID string) ([]string, error) {
	rooms, err := g.VisibleRooms(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// RoomBelongsToUser reports whether roomID is reachable from the spaces of userID.
func (g *Gate) RoomBelongsToUser(ctx context.Context, roomID, userID string) (bool, error) {
	ids, err := g.VisibleRoomIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == roomID {
			return true, nil
		}
	}
	return false, nil
}

// IsRoomAdmin reports whether userID administers the space owning the room in req.
// A missing room or space yields false without an error.
func (g *Gate) IsRoomAdmin(ctx context.Context, req RoomAdminRequest, userID string) (bool, error) {
	spaceID := req.SpaceID
	if spaceID == "" {
		if req.RoomID == "" {
			return false, nil
		}
		room, err := g.roomRepo.GetByID(ctx, req.RoomID)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("get room: %w", err)
		}
		spaceID = room.SpaceID
	}
	space, err := g.spaceRepo.GetByID(ctx, spaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get space: %w", err)
	}
	return IsSpaceAdmin(space, userID), nil
}
