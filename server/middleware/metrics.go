package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flashwise/flashwise/server/internal/observability"
)

// Metrics records per-route request counts and latencies.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			failed := err != nil || c.Response().Status >= 500
			observability.GlobalMetrics().RecordRequest(
				c.Request().Method+" "+c.Path(),
				time.Since(start),
				failed,
			)
			return err
		}
	}
}
