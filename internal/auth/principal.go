package auth

import (
	"context"

	"github.com/salud-red/appointment-service/internal/store"
)

type ctxKey string

const userKey ctxKey = "auth_user"

// FromContext extracts the authenticated domain user from context.
func FromContext(ctx context.Context) (*store.User, bool) {
	u, ok := ctx.Value(userKey).(*store.User)
	return u, ok
}

// ContextWithUser adds a user to the context. Exported so other packages
// can build test contexts.
func ContextWithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
