package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flashwise/flashwise/server/auth"
	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/store"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// replyError maps a service error onto an HTTP response. Unknown errors
// become opaque 500s so internals never leak to clients.
func replyError(c echo.Context, err error) error {
	if apiErr, ok := err.(*apierrors.APIError); ok {
		return c.JSON(apiErr.HTTPStatus(), &errorResponse{
			Code:    string(apiErr.Code),
			Message: apiErr.Message,
		})
	}
	if httpErr, ok := err.(*echo.HTTPError); ok {
		return httpErr
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, &errorResponse{
		Code:    string(apierrors.ErrCodeInternal),
		Message: "internal server error",
	})
}

// currentUser returns the authenticated user of the request, or an
// unauthorized error. The auth middleware guarantees it is set on
// non-public paths.
func (s *APIV1Service) currentUser(c echo.Context) (*store.User, error) {
	user := auth.UserFromContext(c.Request().Context())
	if user == nil {
		return nil, apierrors.Unauthorized("authentication required")
	}
	return user, nil
}

// Healthz reports liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return c.String(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
