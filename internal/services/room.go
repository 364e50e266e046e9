package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roombook/internal/access"
	"roombook/internal/domain"
)

type roomService struct {
	roomRepo       domain.RoomRepository
	gate           *access.Gate
	contextTimeout time.Duration
}

// NewRoomService returns a RoomService. Writes are limited to the admin of the owning space.
func NewRoomService(roomRepo domain.RoomRepository, gate *access.Gate, timeout time.Duration) domain.RoomService {
	return &roomService{roomRepo: roomRepo, gate: gate, contextTimeout: timeout}
}

func validateRoom(room *domain.Room) error {
	room.Name = strings.TrimSpace(room.Name)
	if room.SpaceID == "" {
		return domain.Invalid("space_id is required")
	}
	if room.Name == "" {
		return domain.Invalid("name is required")
	}
	if room.Capacity < 0 {
		return domain.Invalid("capacity must not be negative")
	}
	return nil
}

func (s *roomService) requireAdmin(ctx context.Context, req access.RoomAdminRequest, userID string) error {
	ok, err := s.gate.IsRoomAdmin(ctx, req, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: only the space admin may manage its rooms", domain.ErrForbidden)
	}
	return nil
}

func (s *roomService) Create(ctx context.Context, userID string, room *domain.Room) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, access.RoomAdminRequest{SpaceID: room.SpaceID}, userID); err != nil {
		return err
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (s *roomService) List(ctx context.Context, userID string) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.gate.VisibleRooms(ctx, userID)
}

func (s *roomService) getVisible(ctx context.Context, id, userID string) (*domain.Room, error) {
	visible, err := s.gate.RoomBelongsToUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.ErrNotFound
	}
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

func (s *roomService) Get(ctx context.Context, id, userID string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getVisible(ctx, id, userID)
}

// Update applies patch to a room. Moving a room requires admin rights on both spaces.
func (s *roomService) Update(ctx context.Context, id, userID string, patch domain.RoomPatch) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	room, err := s.getVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, access.RoomAdminRequest{RoomID: id}, userID); err != nil {
		return nil, err
	}
	if patch.SpaceID != nil && *patch.SpaceID != room.SpaceID {
		if err := s.requireAdmin(ctx, access.RoomAdminRequest{SpaceID: *patch.SpaceID}, userID); err != nil {
			return nil, err
		}
		room.SpaceID = *patch.SpaceID
	}
	if patch.Name != nil {
		room.Name = *patch.Name
	}
	if patch.Description != nil {
		room.Description = *patch.Description
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	room.UpdatedAt = time.Now()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getVisible(ctx, id, userID); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, access.RoomAdminRequest{RoomID: id}, userID); err != nil {
		return err
	}
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
