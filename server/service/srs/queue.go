package srs

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/server/timezone"
	"github.com/flashwise/flashwise/store"
)

// StudyQueue assembles the cards a user should study now: every due
// previously-reviewed card (relearning cards first), then new cards up to
// what remains of the daily introduction limit.
func (s *Service) StudyQueue(ctx context.Context, user *store.User, setting *store.UserSetting, now time.Time) ([]*store.Card, error) {
	normal := store.Normal
	nowTs := now.Unix()

	due, err := s.store.ListCards(ctx, &store.FindCard{
		CreatorID:    &user.ID,
		RowStatus:    &normal,
		DueBefore:    &nowTs,
		OnlyReviewed: true,
		OrderByDue:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due cards")
	}

	// Relearning cards come first: a lapse studied late compounds, a
	// mature card studied late mostly does not.
	sort.SliceStable(due, func(i, j int) bool {
		return isRelearning(due[i]) && !isRelearning(due[j])
	})

	remaining, err := s.remainingNewToday(ctx, user, setting, now)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return due, nil
	}

	fresh, err := s.store.ListCards(ctx, &store.FindCard{
		CreatorID:  &user.ID,
		RowStatus:  &normal,
		DueBefore:  &nowTs,
		OnlyNew:    true,
		OrderByDue: true,
		Limit:      &remaining,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list new cards")
	}

	return append(due, fresh...), nil
}

func isRelearning(card *store.Card) bool {
	return card.LapsesCount > 0 && card.RepetitionCount <= 1
}

// remainingNewToday returns how many new cards may still be introduced
// today, in the user's timezone. A non-positive daily limit means no cap.
func (s *Service) remainingNewToday(ctx context.Context, user *store.User, setting *store.UserSetting, now time.Time) (int, error) {
	limit := int(setting.DailyNewLimit)
	if limit <= 0 {
		return int(^uint(0) >> 1), nil
	}

	loc, _ := timezone.Parse(setting.Timezone)
	dayStart := timezone.StartOfDay(now, loc).Unix()

	introduced, err := s.store.CountReviews(ctx, &store.FindReview{
		UserID:           &user.ID,
		CreatedAfter:     &dayStart,
		FirstReviewsOnly: true,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to count new cards introduced today")
	}

	remaining := limit - int(introduced)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
