// Package auth resolves the per-request session. Every protected handler
// re-resolves the session from the incoming token; nothing is cached.
package auth

import (
	"context"

	apperrors "mysre-backend/pkg/errors"
)

// UserContext is the request-scoped authentication result threaded through
// context by the middleware.
type UserContext struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

type userContextKey struct{}

// SetUserInContext stores the resolved user in ctx.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the resolved user or an unauthorized error when the
// middleware did not run (or rejected the request).
func UserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	if !ok || user == nil {
		return nil, apperrors.NewUnauthorizedError("")
	}
	return user, nil
}
