// Package auth issues and validates the HS256 access tokens used by the
// HTTP API.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/store"
)

const (
	// Issuer is the iss claim of every token we sign.
	Issuer = "flashwise"
	// AccessTokenDuration is the lifetime of an access token.
	AccessTokenDuration = 7 * 24 * time.Hour
	// CookieName is the cookie access tokens are carried in alongside the
	// Authorization header.
	CookieName = "flashwise.access-token"
)

// Claims are the registered claims plus the user's role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// UserID returns the numeric user ID carried in the subject claim.
func (c *Claims) UserID() (int32, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid token subject")
	}
	return int32(id), nil
}

// GenerateAccessToken signs an access token for the user. The token ID
// (jti) makes the token individually revocable.
func GenerateAccessToken(user *store.User, secret string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        shortuuid.New(),
			Subject:   strconv.FormatInt(int64(user.ID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
		Role: user.Role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// ValidateAccessToken parses a token string and verifies its signature,
// expiry, and issuer.
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
