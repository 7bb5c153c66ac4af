package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextOptimalFactor(t *testing.T) {
	tests := []struct {
		name         string
		current      float64
		fallback     float64
		usage        int32
		grade        Grade
		overdueRatio float64
		expected     float64
	}{
		{
			name:     "unpopulated cell seeds from fallback",
			fallback: 2.5,
			grade:    GradeGood,
			expected: 2.5,
		},
		{
			name:     "perfect recall grows a fresh cell",
			current:  2.5,
			usage:    1,
			grade:    GradePerfect,
			expected: 2.5625, // halfway to 2.5 * 1.05
		},
		{
			name:     "hard recall shrinks a fresh cell",
			current:  2.5,
			usage:    1,
			grade:    GradeHard,
			expected: 2.4375,
		},
		{
			name:     "good recall on time leaves the cell alone",
			current:  2.2,
			usage:    7,
			grade:    GradeGood,
			expected: 2.2,
		},
		{
			name:     "mature cell moves slowly",
			current:  2.0,
			usage:    9,
			grade:    GradePerfect,
			expected: 2.01, // (2.1 - 2.0) / 10
		},
		{
			name:         "overdue pass discounts the target",
			current:      2.0,
			usage:        1,
			grade:        GradeGood,
			overdueRatio: 0.5,
			expected:     1.95, // halfway to 2.0 * 0.95
		},
		{
			name:         "overdue ratio is capped",
			current:      2.0,
			usage:        1,
			grade:        GradeGood,
			overdueRatio: 4.0,
			expected:     1.9, // capped at ratio 1.0
		},
		{
			name:     "lapse pulls one step toward the floor",
			current:  2.5,
			usage:    1,
			grade:    GradeWrong,
			expected: 2.5 + (MinOptimalFactor-2.5)/2,
		},
		{
			name:     "never below floor",
			current:  1.1,
			grade:    GradeBlackout,
			expected: MinOptimalFactor,
		},
		{
			name:     "never above ceiling",
			current:  3.5,
			grade:    GradePerfect,
			expected: MaxOptimalFactor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOptimalFactor(tt.current, tt.fallback, tt.usage, tt.grade, tt.overdueRatio)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestNextOptimalFactorConverges(t *testing.T) {
	// Consistent evidence should walk the cell toward a stable value
	// without oscillating past it.
	cell := 2.5
	for i := int32(0); i < 200; i++ {
		next := NextOptimalFactor(cell, 0, i, GradeHard, 0)
		assert.LessOrEqual(t, next, cell)
		cell = next
	}
	assert.Greater(t, cell, MinOptimalFactor)
	assert.Less(t, cell, 2.5)
}
