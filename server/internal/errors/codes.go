// Package errors defines the structured error codes the API surfaces and
// maps to HTTP statuses.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of API failure.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodePermissionDenied indicates the caller lacks access to the target.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeNotFound indicates the target does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeAlreadyExists indicates a uniqueness conflict.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeRateLimitExceeded indicates the caller is sending too fast.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeBudgetExceeded indicates the caller's daily AI budget is spent.
	ErrCodeBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// ErrCodeAIUnavailable indicates the AI provider is disabled or failing.
	ErrCodeAIUnavailable ErrorCode = "AI_UNAVAILABLE"
	// ErrCodeInternal indicates an unexpected server failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// APIError is a structured error carrying a code for HTTP mapping.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code onto an HTTP status.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeBudgetExceeded:
		return http.StatusPaymentRequired
	case ErrCodeAIUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodePermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates a conflict error.
func AlreadyExists(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// BudgetExceeded creates a budget exceeded error.
func BudgetExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeBudgetExceeded, Message: msg}
}

// AIUnavailable creates an AI unavailable error.
func AIUnavailable(msg string) *APIError {
	return &APIError{Code: ErrCodeAIUnavailable, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}

// IsCode checks whether an error carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code == code
	}
	return false
}
