package auth

import (
	"context"

	"github.com/flashwise/flashwise/store"
)

type contextKey int

const (
	userContextKey contextKey = iota
	claimsContextKey
)

// SetUserInContext attaches the authenticated user to the context.
func SetUserInContext(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userContextKey).(*store.User)
	return user
}

// SetClaimsInContext attaches the validated token claims to the context.
func SetClaimsInContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the validated token claims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}
