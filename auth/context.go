package auth

import (
	"context"
)

const (
	userIDKey privateKey = "user_id"
)

type privateKey string

// WithUserID attaches an authenticated user ID to the context. Only the ID is
// carried: deriving an identity from a token must not touch the database.
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user ID attached to the
// context, if any.
func UserIDFromContext(ctx context.Context) (int, bool) {
	if temp := ctx.Value(userIDKey); temp != nil {
		if id, ok := temp.(int); ok {
			return id, true
		}
	}
	return 0, false
}
