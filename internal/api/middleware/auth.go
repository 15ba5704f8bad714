package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/contractiq/contractiq/internal/api"
	"github.com/contractiq/contractiq/internal/domain"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenValidator verifies a signed token and returns its subject user ID.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// UserResolver confirms the token subject still maps to a live account.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// BearerAuth validates the Authorization header and loads the account
// behind the token. A missing header, a bad signature and a deleted
// account all produce the same 401 body so callers learn nothing about
// which check failed.
func BearerAuth(validator TokenValidator, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			userID, err := validator.Validate(token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := resolver.ResolveUser(r.Context(), userID)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
