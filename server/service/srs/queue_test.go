package srs

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashwise/flashwise/internal/profile"
	"github.com/flashwise/flashwise/store"
)

// fakeQueueDriver serves ListCards and CountReviews from fixtures; the
// embedded nil Driver panics on anything the queue should not touch.
type fakeQueueDriver struct {
	store.Driver

	cards           []*store.Card
	introducedToday int64
}

func (d *fakeQueueDriver) Close() error {
	return nil
}

func (d *fakeQueueDriver) ListCards(_ context.Context, find *store.FindCard) ([]*store.Card, error) {
	var out []*store.Card
	for _, card := range d.cards {
		if find.OnlyNew && card.LastReviewTs != 0 {
			continue
		}
		if find.OnlyReviewed && card.LastReviewTs == 0 {
			continue
		}
		if find.DueBefore != nil && card.DueTs > *find.DueBefore {
			continue
		}
		out = append(out, card)
	}
	if find.OrderByDue {
		sort.SliceStable(out, func(i, j int) bool { return out[i].DueTs < out[j].DueTs })
	}
	if find.Limit != nil && len(out) > *find.Limit {
		out = out[:*find.Limit]
	}
	return out, nil
}

func (d *fakeQueueDriver) CountReviews(_ context.Context, find *store.FindReview) (int64, error) {
	if find.FirstReviewsOnly {
		return d.introducedToday, nil
	}
	return 0, nil
}

func newQueueFixture(t *testing.T, driver *fakeQueueDriver) *Service {
	t.Helper()
	st := store.New(driver, &profile.Profile{Mode: "dev"})
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st)
}

func reviewedCard(uid string, dueTs int64, repetition, lapses int32) *store.Card {
	return &store.Card{
		UID:             uid,
		CreatorID:       1,
		RowStatus:       store.Normal,
		AFactor:         DefaultAFactor,
		RepetitionCount: repetition,
		LapsesCount:     lapses,
		DueTs:           dueTs,
		LastReviewTs:    dueTs - 86400,
	}
}

func newCard(uid string, dueTs int64) *store.Card {
	return &store.Card{
		UID:       uid,
		CreatorID: 1,
		RowStatus: store.Normal,
		AFactor:   DefaultAFactor,
		DueTs:     dueTs,
	}
}

func TestStudyQueueRelearningFirst(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	// The mature card is due earlier than the relearning one, yet the
	// relearning card must lead the queue.
	driver := &fakeQueueDriver{
		cards: []*store.Card{
			reviewedCard("mature-early", now.Add(-3*time.Hour).Unix(), 6, 0),
			reviewedCard("relearning", now.Add(-1*time.Hour).Unix(), 1, 2),
			reviewedCard("mature-late", now.Add(-30*time.Minute).Unix(), 4, 0),
		},
	}
	service := newQueueFixture(t, driver)
	user := &store.User{ID: 1}
	setting := &store.UserSetting{Timezone: "UTC", DailyNewLimit: 0}

	queue, err := service.StudyQueue(context.Background(), user, setting, now)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, "relearning", queue[0].UID)
	// The rest keep their due order.
	assert.Equal(t, "mature-early", queue[1].UID)
	assert.Equal(t, "mature-late", queue[2].UID)
}

func TestStudyQueueDailyNewCap(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	driver := &fakeQueueDriver{
		cards: []*store.Card{
			reviewedCard("due", now.Add(-time.Hour).Unix(), 3, 0),
			newCard("new-1", now.Add(-3*time.Hour).Unix()),
			newCard("new-2", now.Add(-2*time.Hour).Unix()),
			newCard("new-3", now.Add(-1*time.Hour).Unix()),
		},
		introducedToday: 2,
	}
	service := newQueueFixture(t, driver)
	user := &store.User{ID: 1}
	setting := &store.UserSetting{Timezone: "UTC", DailyNewLimit: 3}

	// Two of today's three introductions are spent, so exactly one new
	// card joins the due one, the earliest-due first.
	queue, err := service.StudyQueue(context.Background(), user, setting, now)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "due", queue[0].UID)
	assert.Equal(t, "new-1", queue[1].UID)
}

func TestStudyQueueDailyLimitExhausted(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	driver := &fakeQueueDriver{
		cards: []*store.Card{
			reviewedCard("due", now.Add(-time.Hour).Unix(), 3, 0),
			newCard("new-1", now.Add(-time.Hour).Unix()),
		},
		introducedToday: 3,
	}
	service := newQueueFixture(t, driver)
	user := &store.User{ID: 1}
	setting := &store.UserSetting{Timezone: "UTC", DailyNewLimit: 3}

	queue, err := service.StudyQueue(context.Background(), user, setting, now)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "due", queue[0].UID)
}

func TestStudyQueueNoCapWhenLimitUnset(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	driver := &fakeQueueDriver{
		cards: []*store.Card{
			newCard("new-1", now.Add(-2*time.Hour).Unix()),
			newCard("new-2", now.Add(-time.Hour).Unix()),
		},
		introducedToday: 50,
	}
	service := newQueueFixture(t, driver)
	user := &store.User{ID: 1}
	setting := &store.UserSetting{Timezone: "UTC", DailyNewLimit: 0}

	queue, err := service.StudyQueue(context.Background(), user, setting, now)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestStudyQueueNotYetDueExcluded(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	driver := &fakeQueueDriver{
		cards: []*store.Card{
			reviewedCard("due", now.Add(-time.Hour).Unix(), 3, 0),
			reviewedCard("future", now.Add(48*time.Hour).Unix(), 3, 0),
		},
	}
	service := newQueueFixture(t, driver)
	user := &store.User{ID: 1}
	setting := &store.UserSetting{Timezone: "UTC"}

	queue, err := service.StudyQueue(context.Background(), user, setting, now)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "due", queue[0].UID)
}
