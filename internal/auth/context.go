package auth

import (
	"context"

	"github.com/google/uuid"
)

type claimsKey struct{}

// WithClaims attaches the authenticated administrator to the context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return WithClaims(ctx, &Claims{UserID: id})
}

// UserIDFromContext reports false when no administrator is attached or the id is empty.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return c.UserID, true
}
