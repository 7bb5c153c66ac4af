package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/store"
	"github.com/flashwise/flashwise/store/cache"
)

// Authenticator resolves access tokens to users and tracks revoked
// tokens until they would have expired anyway.
type Authenticator struct {
	store   *store.Store
	secret  string
	revoked *cache.Cache
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(s *store.Store, secret string) *Authenticator {
	return &Authenticator{
		store:  s,
		secret: secret,
		revoked: cache.New(cache.Config{
			DefaultTTL:      AccessTokenDuration,
			CleanupInterval: time.Hour,
			MaxItems:        10000,
		}),
	}
}

// Authenticate resolves a bearer token to its user. It returns an error
// for missing, invalid, revoked tokens and for archived users.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*store.User, *Claims, error) {
	claims, err := ValidateAccessToken(token, a.secret)
	if err != nil {
		return nil, nil, err
	}
	if _, revoked := a.revoked.Get(ctx, claims.ID); revoked {
		return nil, nil, errors.New("access token has been revoked")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}
	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to find user for token")
	}
	if user == nil {
		return nil, nil, errors.New("user not found")
	}
	if user.RowStatus == store.Archived {
		return nil, nil, errors.Errorf("user %q is archived", user.Username)
	}
	return user, claims, nil
}

// Revoke invalidates a token for the remainder of its lifetime.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	ttl := AccessTokenDuration
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	a.revoked.SetWithTTL(ctx, claims.ID, true, ttl)
}

// Close releases the revocation cache.
func (a *Authenticator) Close() {
	a.revoked.Close()
}

// TokenFromHeader extracts a bearer token from an Authorization header
// value. It returns an empty string when the header carries none.
func TokenFromHeader(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
