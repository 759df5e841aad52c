package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type ctxKey struct{}

type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

type Accounts interface {
	CheckActive(ctx context.Context, id uuid.UUID) error
}

// Authenticate requires a bearer token of a still active user and stores that
// user in the context.
func Authenticate(tokens TokenParser, accounts Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respond.Error(w, r, "authenticating", apperr.Auth("Token is invalid or missing"))
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				respond.Error(w, r, "authenticating", err)
				return
			}

			if err := accounts.CheckActive(r.Context(), userID); err != nil {
				respond.Error(w, r, "authenticating", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user. It is uuid.Nil outside Authenticate.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxKey{}).(uuid.UUID)
	return id
}
