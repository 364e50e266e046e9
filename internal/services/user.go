package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"roombook/internal/access"
	"roombook/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	spaceRepo      domain.SpaceRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
// emailService may be nil, in which case no welcome email is sent.
func NewUserService(userRepo domain.UserRepository, spaceRepo domain.SpaceRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		spaceRepo:      spaceRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// passwordFingerprint binds a session to the password hash it was issued under.
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", domain.Invalid("invalid email format")
	}
	return email, nil
}

func (s *userService) setPassword(user *domain.User, password string) error {
	if len(password) < minPasswordLen {
		return domain.Invalid("password must be at least %d characters", minPasswordLen)
	}
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return err
	}
	user.Salt = salt
	user.PasswordHash = hash
	return nil
}

func (s *userService) Register(ctx context.Context, user *domain.User, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email, err := normalizeEmail(user.Email)
	if err != nil {
		return err
	}
	user.Email = email
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	if err := s.setPassword(user, password); err != nil {
		return err
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, FirstName: user.FirstName}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) issue(user *domain.User) (string, error) {
	claims := domain.SessionClaims{
		UserID:              user.ID,
		Email:               user.Email,
		PasswordFingerprint: passwordFingerprint(user.PasswordHash),
	}
	token, err := s.tokenIssuer.Issue(claims, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token and the user it names, and issues a replacement token.
// The token is rejected once the user is gone or their email or password has changed.
func (s *userService) Verify(ctx context.Context, token string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	claims, err := s.tokenIssuer.Parse(token)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid user token", domain.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("%w: invalid user token", domain.ErrUnauthorized)
		}
		return "", "", fmt.Errorf("get user: %w", err)
	}
	if user.Email != claims.Email || passwordFingerprint(user.PasswordHash) != claims.PasswordFingerprint {
		return "", "", fmt.Errorf("%w: invalid user token", domain.ErrUnauthorized)
	}
	refreshed, err := s.issue(user)
	if err != nil {
		return "", "", err
	}
	return user.ID, refreshed, nil
}

func (s *userService) RefreshToken(ctx context.Context, token string) (string, error) {
	_, refreshed, err := s.Verify(ctx, token)
	return refreshed, err
}

// visibleMembers returns the caller and everyone sharing a space with them, sorted by ID.
func (s *userService) visibleMembers(ctx context.Context, userID string) ([]*domain.Member, error) {
	spaces, err := s.spaceRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	spaceIDs := make(map[string][]string)
	for _, space := range spaces {
		for _, id := range access.EffectiveMembers(space) {
			spaceIDs[id] = append(spaceIDs[id], space.ID)
		}
	}
	if _, ok := spaceIDs[userID]; !ok {
		spaceIDs[userID] = []string{}
	}
	ids := make([]string, 0, len(spaceIDs))
	for id := range spaceIDs {
		ids = append(ids, id)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	members := make([]*domain.Member, 0, len(users))
	for _, u := range users {
		members = append(members, &domain.Member{User: u, SpaceIDs: spaceIDs[u.ID]})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *userService) ListVisible(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Member, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	members, err := s.visibleMembers(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	total := len(members)
	if params.PageSize <= 0 {
		return members, total, nil
	}
	start := params.Offset()
	if start >= total {
		return []*domain.Member{}, total, nil
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return members[start:end], total, nil
}

func (s *userService) GetVisible(ctx context.Context, id, userID string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	members, err := s.visibleMembers(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *userService) Update(ctx context.Context, id, userID string, patch domain.UserPatch) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if id != userID {
		return nil, fmt.Errorf("%w: you can only update your own account", domain.ErrForbidden)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Password != nil {
		if err := s.setPassword(user, *patch.Password); err != nil {
			return nil, err
		}
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.PostCode != nil {
		user.PostCode = *patch.PostCode
	}
	if patch.Country != nil {
		user.Country = *patch.Country
	}
	if patch.Position != nil {
		user.Position = *patch.Position
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if id != userID {
		return fmt.Errorf("%w: you can only delete your own account", domain.ErrForbidden)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
