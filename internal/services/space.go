package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"roombook/internal/access"
	"roombook/internal/domain"
)

// inviteCodeAttempts bounds retries when a generated invite code collides.
const inviteCodeAttempts = 3

type spaceService struct {
	spaceRepo      domain.SpaceRepository
	contextTimeout time.Duration
	newCode        func() string
}

// NewSpaceService returns a SpaceService backed by spaceRepo.
func NewSpaceService(spaceRepo domain.SpaceRepository, timeout time.Duration) domain.SpaceService {
	return &spaceService{
		spaceRepo:      spaceRepo,
		contextTimeout: timeout,
		newCode:        generateInviteCode,
	}
}

func generateInviteCode() string {
	return uuid.NewString()
}

func validateSpace(space *domain.Space) error {
	space.Name = strings.TrimSpace(space.Name)
	if space.Name == "" {
		return domain.Invalid("name is required")
	}
	if space.Capacity < 0 {
		return domain.Invalid("capacity must not be negative")
	}
	return nil
}

func (s *spaceService) Create(ctx context.Context, userID string, space *domain.Space) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateSpace(space); err != nil {
		return err
	}
	space.AdminID = userID
	if space.UserIDs == nil {
		space.UserIDs = []string{}
	}
	now := time.Now()
	space.CreatedAt = now
	space.UpdatedAt = now

	var err error
	for i := 0; i < inviteCodeAttempts; i++ {
		space.InviteCode = s.newCode()
		err = s.spaceRepo.Create(ctx, space)
		if !errors.Is(err, domain.ErrDuplicateInviteCode) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}
	return nil
}

func (s *spaceService) List(ctx context.Context, userID string) ([]*domain.Space, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	spaces, err := s.spaceRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

// getVisible loads a space and hides it from non-members.
func (s *spaceService) getVisible(ctx context.Context, id, userID string) (*domain.Space, error) {
	space, err := s.spaceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get space: %w", err)
	}
	if !access.IsSpaceMember(space, userID) {
		return nil, domain.ErrNotFound
	}
	return space, nil
}

func (s *spaceService) getAdministered(ctx context.Context, id, userID string) (*domain.Space, error) {
	space, err := s.getVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !access.IsSpaceAdmin(space, userID) {
		return nil, fmt.Errorf("%w: only the space admin may do this", domain.ErrForbidden)
	}
	return space, nil
}

func (s *spaceService) Get(ctx context.Context, id, userID string) (*domain.Space, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getVisible(ctx, id, userID)
}

func (s *spaceService) Update(ctx context.Context, id, userID string, patch domain.SpacePatch) (*domain.Space, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	space, err := s.getAdministered(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		space.Name = *patch.Name
	}
	if patch.Description != nil {
		space.Description = *patch.Description
	}
	if patch.Capacity != nil {
		space.Capacity = *patch.Capacity
	}
	if err := validateSpace(space); err != nil {
		return nil, err
	}
	space.UpdatedAt = time.Now()
	if err := s.spaceRepo.Update(ctx, space); err != nil {
		return nil, fmt.Errorf("update space: %w", err)
	}
	return space, nil
}

func (s *spaceService) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getAdministered(ctx, id, userID); err != nil {
		return err
	}
	if err := s.spaceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	return nil
}

// Join redeems an invite code. Redeeming a code for a space the caller already belongs to
// returns ErrAlreadyMember and leaves membership unchanged.
func (s *spaceService) Join(ctx context.Context, inviteCode, userID string) (*domain.Space, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, domain.Invalid("invite_code is required")
	}
	space, err := s.spaceRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get space: %w", err)
	}
	if access.IsSpaceMember(space, userID) {
		return nil, domain.ErrAlreadyMember
	}
	if err := s.spaceRepo.AddMember(ctx, space.ID, userID); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return nil, err
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	space.UserIDs = append(space.UserIDs, userID)
	return space, nil
}

func (s *spaceService) Leave(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	space, err := s.getVisible(ctx, id, userID)
	if err != nil {
		return err
	}
	if access.IsSpaceAdmin(space, userID) {
		return domain.Invalid("the space admin cannot leave the space")
	}
	if err := s.spaceRepo.RemoveMember(ctx, id, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *spaceService) RegenerateInviteCode(ctx context.Context, id, userID string) (*domain.Space, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	space, err := s.getAdministered(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	for i := 0; i < inviteCodeAttempts; i++ {
		code := s.newCode()
		err = s.spaceRepo.SetInviteCode(ctx, id, code)
		if err == nil {
			space.InviteCode = code
			return space, nil
		}
		if !errors.Is(err, domain.ErrDuplicateInviteCode) {
			break
		}
	}
	return nil, fmt.Errorf("set invite code: %w", err)
}
