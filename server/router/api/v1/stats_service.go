package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/stats"
)

// statsMessage is the API shape of a user's study statistics.
type statsMessage struct {
	TotalCards      int64   `json:"totalCards"`
	NewCards        int64   `json:"newCards"`
	DueNow          int64   `json:"dueNow"`
	ReviewsToday    int64   `json:"reviewsToday"`
	ReviewsLastWeek int64   `json:"reviewsLastWeek"`
	RetentionRate   float64 `json:"retentionRate"`
	StreakDays      int64   `json:"streakDays"`
}

// GetStats returns the current user's study statistics.
func (s *APIV1Service) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	setting, err := s.Store.GetUserSetting(ctx, user.ID)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to load user setting", err))
	}

	result, err := stats.Compute(ctx, s.Store, user, setting, time.Now())
	if err != nil {
		return replyError(c, apierrors.Internal("failed to compute stats", err))
	}

	return c.JSON(http.StatusOK, &statsMessage{
		TotalCards:      result.TotalCards,
		NewCards:        result.NewCards,
		DueNow:          result.DueNow,
		ReviewsToday:    result.ReviewsToday,
		ReviewsLastWeek: result.ReviewsLastWeek,
		RetentionRate:   result.RetentionRate,
		StreakDays:      result.StreakDays,
	})
}
