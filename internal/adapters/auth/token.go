package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"

	"roombook/internal/domain"
)

// jwtClaims carries the session claims sealed in Data, so the token body reveals nothing
// about the user.
type jwtClaims struct {
	jwt.RegisteredClaims
	Data string `json:"data"`
}

type jwtIssuer struct {
	secret []byte
	key    []byte
}

// NewJWTIssuer returns a TokenIssuer that signs JWTs with HS256 using secret and seals the
// session claims with key (see DeriveKey).
func NewJWTIssuer(secret string, key []byte) (domain.TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("payload key must be %d bytes", chacha20poly1305.KeySize)
	}
	return &jwtIssuer{secret: []byte(secret), key: key}, nil
}

func (i *jwtIssuer) Issue(c domain.SessionClaims, expiry time.Duration) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	sealed, err := Seal(i.key, payload)
	if err != nil {
		return "", fmt.Errorf("seal claims: %w", err)
	}
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Data: sealed,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

func (i *jwtIssuer) Parse(token string) (domain.SessionClaims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.SessionClaims{}, fmt.Errorf("parse token: %w", err)
	}
	payload, err := Open(i.key, claims.Data)
	if err != nil {
		return domain.SessionClaims{}, fmt.Errorf("open claims: %w", err)
	}
	var out domain.SessionClaims
	if err := json.Unmarshal(payload, &out); err != nil {
		return domain.SessionClaims{}, fmt.Errorf("decode claims: %w", err)
	}
	if out.UserID == "" {
		return domain.SessionClaims{}, fmt.Errorf("decode claims: %w", ErrMalformedPayload)
	}
	return out, nil
}
