package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)

	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.DateOnly)
	}

	t.Run("no reviews", func(t *testing.T) {
		assert.EqualValues(t, 0, streak(map[string]bool{}, now, loc))
	})

	t.Run("reviewed today and two days before", func(t *testing.T) {
		days := map[string]bool{day(0): true, day(-1): true, day(-2): true}
		assert.EqualValues(t, 3, streak(days, now, loc))
	})

	t.Run("not yet reviewed today keeps yesterday's streak", func(t *testing.T) {
		days := map[string]bool{day(-1): true, day(-2): true}
		assert.EqualValues(t, 2, streak(days, now, loc))
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		days := map[string]bool{day(0): true, day(-2): true, day(-3): true}
		assert.EqualValues(t, 1, streak(days, now, loc))
	})

	t.Run("missed yesterday and today", func(t *testing.T) {
		days := map[string]bool{day(-2): true, day(-3): true}
		assert.EqualValues(t, 0, streak(days, now, loc))
	})
}
