package srs

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustAFactor(t *testing.T) {
	tests := []struct {
		name     string
		af       float64
		grade    Grade
		expected float64
	}{
		{"perfect recall raises easiness", 2.5, GradePerfect, 2.6},
		{"good recall keeps easiness", 2.5, GradeGood, 2.5},
		{"hard recall lowers easiness", 2.5, GradeHard, 2.36},
		{"blackout drops hard", 2.5, GradeBlackout, 1.7},
		{"never below floor", 1.3, GradeBlackout, MinAFactor},
		{"never above ceiling", 3.0, GradePerfect, MaxAFactor},
		{"zero treated as default", 0, GradeGood, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AdjustAFactor(tt.af, tt.grade), 1e-9)
		})
	}
}

func TestCategory(t *testing.T) {
	// category = round((3.0 - af) / 0.17), clamped onto 0..9.
	tests := []struct {
		af       float64
		expected int32
	}{
		{3.0, 0},
		{2.9, 1},
		{2.5, 3},
		{2.0, 6},
		{1.5, 9},
		{1.3, 9}, // round(10) clamped onto the last column
		{0, 3},   // unset is treated as the default A-factor
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Category(tt.af), "af=%v", tt.af)
	}

	// Categories are monotone: a harder card never maps to an easier column.
	prev := int32(-1)
	for af := MaxAFactor; af >= MinAFactor-1e-9; af -= 0.01 {
		cat := Category(af)
		require.GreaterOrEqual(t, cat, prev)
		prev = cat
	}
}

func TestScheduleEarlyRepetitions(t *testing.T) {
	engine := NewEngine()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// First successful review of a new card.
	result := engine.Schedule(State{AFactor: DefaultAFactor}, GradeGood, 0, now, "card-a")
	assert.Equal(t, int32(1), result.RepetitionCount)
	assert.Equal(t, int32(1), result.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 1).Unix(), result.DueTs)
	assert.False(t, result.MatrixUsed)

	// Second successful review.
	result = engine.Schedule(result.State, GradeGood, 0, now, "card-a")
	assert.Equal(t, int32(2), result.RepetitionCount)
	assert.Equal(t, int32(6), result.IntervalDays)
}

func TestScheduleMatrixTakesOver(t *testing.T) {
	engine := NewEngine()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	state := State{
		AFactor:         2.5,
		RepetitionCount: 2,
		IntervalDays:    6,
		LastReviewTs:    now.AddDate(0, 0, -6).Unix(),
	}

	// Without a tuned cell the growth factor is the adjusted A-factor.
	sm2 := engine.Schedule(state, GradeGood, 0, now, "")
	assert.False(t, sm2.MatrixUsed)
	assert.Equal(t, int32(15), sm2.IntervalDays) // ceil(6 * 2.5)

	// With a tuned cell the matrix factor wins.
	tuned := engine.Schedule(state, GradeGood, 2.0, now, "")
	assert.True(t, tuned.MatrixUsed)
	assert.Equal(t, int32(12), tuned.IntervalDays) // ceil(6 * 2.0)
}

func TestScheduleLapse(t *testing.T) {
	engine := NewEngine()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	state := State{
		AFactor:         2.5,
		RepetitionCount: 5,
		IntervalDays:    40,
		LapsesCount:     1,
	}

	result := engine.Schedule(state, GradeWrong, 2.2, now, "")
	assert.Equal(t, int32(1), result.RepetitionCount)
	assert.Equal(t, int32(1), result.IntervalDays)
	assert.Equal(t, int32(2), result.LapsesCount)
	assert.Less(t, result.AFactor, state.AFactor)
	assert.False(t, result.MatrixUsed)
	assert.Equal(t, now.AddDate(0, 0, 1).Unix(), result.DueTs)

	// The one-day relearn step counted as repetition 1, so the next
	// success moves straight to the six-day second interval.
	relearned := engine.Schedule(result.State, GradeGood, 0, now, "")
	assert.Equal(t, int32(2), relearned.RepetitionCount)
	assert.Equal(t, int32(6), relearned.IntervalDays)
}

func TestScheduleIntervalAlwaysGrowsOnSuccess(t *testing.T) {
	engine := NewEngine()
	now := time.Now()
	state := State{
		AFactor:         1.3,
		RepetitionCount: 4,
		IntervalDays:    5,
	}

	// A sub-1.0 factor cannot exist, but even factor 1.0 with rounding
	// must still push the card out.
	result := engine.Schedule(state, GradeHard, 1.1, now, "")
	assert.Greater(t, result.IntervalDays, state.IntervalDays)
}

func TestScheduleFuzzCannotShrinkInterval(t *testing.T) {
	engine := NewEngine()
	now := time.Now()
	// A slow-growing hard card whose next interval sits just above the
	// fuzz threshold, where a -5% spread could otherwise pull it back to
	// the previous interval.
	state := State{
		AFactor:         1.3,
		RepetitionCount: 3,
		IntervalDays:    10,
	}

	for i := 0; i < 10000; i++ {
		seed := "card-" + strconv.Itoa(i)
		result := engine.Schedule(state, GradeHard, 1.1, now, seed)
		require.Greater(t, result.IntervalDays, state.IntervalDays, "seed=%s", seed)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	engine := NewEngine()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	state := State{
		AFactor:         2.5,
		RepetitionCount: 6,
		IntervalDays:    30,
	}

	first := engine.Schedule(state, GradeGood, 2.3, now, "card-uid-1")
	second := engine.Schedule(state, GradeGood, 2.3, now, "card-uid-1")
	assert.Equal(t, first, second)
}

func TestFuzzInterval(t *testing.T) {
	// Short intervals are never fuzzed.
	assert.Equal(t, int32(6), fuzzInterval(6, "any-seed"))
	// No seed, no fuzz.
	assert.Equal(t, int32(30), fuzzInterval(30, ""))

	// Fuzz stays within ±5% and is stable per seed.
	for _, seed := range []string{"a", "b", "c", "card-xyz"} {
		fuzzed := fuzzInterval(100, seed)
		assert.GreaterOrEqual(t, fuzzed, int32(95), "seed=%s", seed)
		assert.LessOrEqual(t, fuzzed, int32(105), "seed=%s", seed)
		assert.Equal(t, fuzzed, fuzzInterval(100, seed), "seed=%s", seed)
	}
}

func TestClampRepetition(t *testing.T) {
	assert.Equal(t, int32(1), ClampRepetition(0))
	assert.Equal(t, int32(1), ClampRepetition(-3))
	assert.Equal(t, int32(7), ClampRepetition(7))
	assert.Equal(t, int32(MaxRepetition), ClampRepetition(MaxRepetition+5))
}
