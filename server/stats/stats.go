// Package stats computes per-user study statistics from the review
// history. Everything derives from one review query per request, which is
// cheap at personal-instance scale.
package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/server/service/srs"
	"github.com/flashwise/flashwise/server/timezone"
	"github.com/flashwise/flashwise/store"
)

// retentionWindowDays is the lookback for the retention rate.
const retentionWindowDays = 30

// streakLookbackDays caps how far back the streak scan goes.
const streakLookbackDays = 365

// StudyStats is a snapshot of a user's study state.
type StudyStats struct {
	TotalCards int64
	NewCards   int64
	DueNow     int64

	ReviewsToday    int64
	ReviewsLastWeek int64

	// RetentionRate is the share of non-lapse grades among reviews in the
	// last 30 days, 0..1. 0 when there are no reviews in the window.
	RetentionRate float64

	// StreakDays counts consecutive local days with at least one review,
	// ending today or yesterday.
	StreakDays int64
}

// Compute gathers study statistics for the user.
func Compute(ctx context.Context, st *store.Store, user *store.User, setting *store.UserSetting, now time.Time) (*StudyStats, error) {
	stats := &StudyStats{}
	normal := store.Normal
	nowTs := now.Unix()

	var err error
	if stats.TotalCards, err = st.CountCards(ctx, &store.FindCard{
		CreatorID: &user.ID,
		RowStatus: &normal,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to count cards")
	}
	if stats.NewCards, err = st.CountCards(ctx, &store.FindCard{
		CreatorID: &user.ID,
		RowStatus: &normal,
		OnlyNew:   true,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to count new cards")
	}
	if stats.DueNow, err = st.CountCards(ctx, &store.FindCard{
		CreatorID:    &user.ID,
		RowStatus:    &normal,
		DueBefore:    &nowTs,
		OnlyReviewed: true,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to count due cards")
	}

	loc, _ := timezone.Parse(setting.Timezone)
	lookbackStart := timezone.StartOfDay(now.AddDate(0, 0, -streakLookbackDays), loc).Unix()
	reviews, err := st.ListReviews(ctx, &store.FindReview{
		UserID:       &user.ID,
		CreatedAfter: &lookbackStart,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	dayStart := timezone.StartOfDay(now, loc).Unix()
	weekStart := timezone.StartOfDay(now.AddDate(0, 0, -6), loc).Unix()
	retentionStart := now.AddDate(0, 0, -retentionWindowDays).Unix()

	var retentionTotal, retentionPassed int64
	reviewDays := make(map[string]bool)
	for _, review := range reviews {
		if review.CreatedTs >= dayStart {
			stats.ReviewsToday++
		}
		if review.CreatedTs >= weekStart {
			stats.ReviewsLastWeek++
		}
		if review.CreatedTs >= retentionStart {
			retentionTotal++
			if !srs.Grade(review.Grade).IsLapse() {
				retentionPassed++
			}
		}
		day := time.Unix(review.CreatedTs, 0).In(loc).Format(time.DateOnly)
		reviewDays[day] = true
	}
	if retentionTotal > 0 {
		stats.RetentionRate = float64(retentionPassed) / float64(retentionTotal)
	}
	stats.StreakDays = streak(reviewDays, now, loc)

	return stats, nil
}

// streak counts consecutive active days backwards. A streak survives
// until the end of today, so a day without a review so far does not break
// it yet.
func streak(reviewDays map[string]bool, now time.Time, loc *time.Location) int64 {
	day := timezone.StartOfDay(now, loc)
	if !reviewDays[day.Format(time.DateOnly)] {
		day = day.AddDate(0, 0, -1)
	}

	var count int64
	for i := 0; i < streakLookbackDays; i++ {
		if !reviewDays[day.Format(time.DateOnly)] {
			break
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}
