package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/stroopgame/internal/api/apierr"
	"github.com/mcoot/stroopgame/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// UserLookup resolves a user ID to a user
type UserLookup interface {
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
}

// Identify creates middleware that requires a known user ID in the request
func Identify(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := extractUserID(r)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			user, err := users.GetUser(r.Context(), model.UserID(id))
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
					return
				}
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractUserID reads the caller's user ID from the request.
// EventSource and browser websockets cannot set headers, so a user_id query
// parameter is accepted too.
func extractUserID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}

// GetUser returns the identified user from the request context
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// MustGetUser returns the identified user or panics
func MustGetUser(ctx context.Context) *model.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - identify middleware not applied?")
	}
	return user
}

// WithUser returns a context carrying the given user
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
