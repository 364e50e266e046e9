package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenHeader carries the session token on requests and the rotated token on responses.
const TokenHeader = "JWT"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// tokenFromRequest reads the JWT header, falling back to a Bearer Authorization header.
func tokenFromRequest(r *http.Request) (string, string) {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", "invalid authorization format"
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

// RequireAuth returns a wrapper that verifies the session token, sets the user ID in the request
// context and returns a rotated token in the JWT response header.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := tokenFromRequest(r)
			if problem != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, problem)
				return
			}
			userID, refreshed, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			if refreshed != "" {
				w.Header().Set(TokenHeader, refreshed)
			}
			r = r.WithContext(SetUserID(r.Context(), userID))
			next(w, r)
		}
	}
}
