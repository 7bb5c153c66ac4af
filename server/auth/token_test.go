package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashwise/flashwise/store"
)

const testSecret = "test-secret-0123456789abcdef0123456789abcdef"

func newTestUser() *store.User {
	return &store.User{
		ID:       42,
		Username: "alice",
		Role:     store.RoleUser,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateAccessToken(newTestUser(), testSecret, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int32(42), userID)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(AccessTokenDuration), claims.ExpiresAt.Time, time.Second)
}

func TestValidateAccessTokenRejections(t *testing.T) {
	now := time.Now()

	t.Run("empty token", func(t *testing.T) {
		_, err := ValidateAccessToken("", testSecret)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateAccessToken(newTestUser(), testSecret, now)
		require.NoError(t, err)
		_, err = ValidateAccessToken(token, "another-secret")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateAccessToken(newTestUser(), testSecret, now.Add(-AccessTokenDuration-time.Hour))
		require.NoError(t, err)
		_, err = ValidateAccessToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ValidateAccessToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: "42",
			Issuer:  Issuer,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateAccessToken(token, testSecret)
		assert.Error(t, err)
	})
}

func TestTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", TokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", TokenFromHeader("bearer abc"))
	assert.Equal(t, "", TokenFromHeader(""))
	assert.Equal(t, "", TokenFromHeader("Basic abc"))
	assert.Equal(t, "", TokenFromHeader("Bearer"))
}
