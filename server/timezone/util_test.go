package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	loc, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = Parse("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	loc, err = Parse("Not/AZone")
	require.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("UTC"))
	assert.True(t, IsValid("Europe/Berlin"))
	assert.False(t, IsValid("Nowhere"))
}

func TestStartOfDay(t *testing.T) {
	berlin, err := Parse("Europe/Berlin")
	require.NoError(t, err)

	// 23:30 UTC on June 1 is already June 2 in Berlin.
	moment := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	start := StartOfDay(moment, berlin)
	assert.Equal(t, 2, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, berlin, start.Location())
}

func TestDaysBetween(t *testing.T) {
	loc := time.UTC
	a := time.Date(2025, 6, 1, 23, 0, 0, 0, loc)
	b := time.Date(2025, 6, 2, 1, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(a, b, loc))
	assert.Equal(t, 0, DaysBetween(a, a, loc))
	assert.Equal(t, -1, DaysBetween(b, a, loc))
}
