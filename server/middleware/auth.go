package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flashwise/flashwise/server/auth"
)

// publicPathPrefixes are served without a token. Handlers behind them
// still receive the user when a valid token is present, so public decks
// can show owner-only details to their owner.
var publicPathPrefixes = []string{
	"/api/v1/auth/signup",
	"/api/v1/auth/signin",
	"/api/v1/instance/profile",
	"/u/",
	"/healthz",
}

func isPublicPath(path string) bool {
	for _, prefix := range publicPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Auth returns an echo middleware that resolves the access token and
// rejects unauthenticated requests to non-public paths.
func Auth(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.TokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				if cookie, err := c.Cookie(auth.CookieName); err == nil {
					token = cookie.Value
				}
			}

			if token != "" {
				user, claims, err := authenticator.Authenticate(c.Request().Context(), token)
				if err == nil {
					ctx := auth.SetUserInContext(c.Request().Context(), user)
					ctx = auth.SetClaimsInContext(ctx, claims)
					c.SetRequest(c.Request().WithContext(ctx))
				} else if !isPublicPath(c.Path()) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
				}
			} else if !isPublicPath(c.Path()) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			return next(c)
		}
	}
}
