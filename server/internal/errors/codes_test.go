package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsFormat(t *testing.T) {
	err := PermissionDenied("deck %q does not belong to you", "9dK3bq")
	assert.Equal(t, ErrCodePermissionDenied, err.Code)
	assert.Equal(t, `deck "9dK3bq" does not belong to you`, err.Message)

	err = Unauthorized("token for user %d revoked", 7)
	assert.Equal(t, ErrCodeUnauthorized, err.Code)
	assert.Equal(t, "token for user 7 revoked", err.Message)

	err = NotFound("card %q not found", "abc")
	assert.Equal(t, `card "abc" not found`, err.Message)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      *APIError
		expected int
	}{
		{Unauthorized("no token"), http.StatusUnauthorized},
		{PermissionDenied("not yours"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{InvalidArgument("bad"), http.StatusBadRequest},
		{AlreadyExists("dup"), http.StatusConflict},
		{RateLimitExceeded("slow down"), http.StatusTooManyRequests},
		{BudgetExceeded("spent"), http.StatusPaymentRequired},
		{AIUnavailable("off"), http.StatusServiceUnavailable},
		{Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestIsCode(t *testing.T) {
	err := BudgetExceeded("daily budget spent")
	assert.True(t, IsCode(err, ErrCodeBudgetExceeded))
	assert.False(t, IsCode(err, ErrCodeInternal))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}
