package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrDuplicateEmail is returned when registering or updating to an email that is already taken.
var ErrDuplicateEmail = fmt.Errorf("%w: email already in use", ErrConflict)

// User represents a registered user. Password material is never serialized.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	PostCode     string    `json:"post_code"`
	Country      string    `json:"country"`
	Position     string    `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, firstName, lastName, postCode, country, position string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		PostCode:  postCode,
		Country:   country,
		Position:  position,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Member is a user visible to the caller together with the spaces they share.
// swagger:model Member
type Member struct {
	*User
	SpaceIDs []string `json:"space_ids"`
}

// UserPatch carries the fields of a partial profile update. Nil fields are unchanged.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	PostCode  *string
	Country   *string
	Position  *string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// SessionClaims is the identity sealed inside a session token. PasswordFingerprint ties the
// token to the password hash current at login, so changing the password revokes it.
type SessionClaims struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email"`
	PasswordFingerprint string `json:"pwd"`
}

// TokenIssuer issues and parses session tokens.
type TokenIssuer interface {
	Issue(claims SessionClaims, expiry time.Duration) (string, error)
	Parse(token string) (SessionClaims, error)
}

// TokenVerifier verifies a session token and returns the authenticated user ID together with
// a freshly issued token extending the session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID, refreshed string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// UserService defines the business logic for user profile and authentication.
type UserService interface {
	TokenVerifier
	Register(ctx context.Context, user *User, password string) error
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	RefreshToken(ctx context.Context, token string) (string, error)
	ListVisible(ctx context.Context, userID string, params PaginationParams) ([]*Member, int, error)
	GetVisible(ctx context.Context, id, userID string) (*Member, error)
	Update(ctx context.Context, id, userID string, patch UserPatch) (*User, error)
	Delete(ctx context.Context, id, userID string) error
}
