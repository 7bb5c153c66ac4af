// Package timezone handles the IANA timezone parsing and day-boundary
// math the study scheduler depends on.
package timezone

import (
	"time"

	"github.com/pkg/errors"
)

// Parse parses an IANA timezone identifier. Invalid or empty identifiers
// fall back to UTC with an error.
func Parse(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, errors.Wrapf(err, "invalid timezone %q", tz)
	}
	return loc, nil
}

// IsValid reports whether a timezone identifier parses.
func IsValid(tz string) bool {
	_, err := Parse(tz)
	return err == nil
}

// StartOfDay returns 00:00:00 of t's day in the given location. The study
// day boundary ("today's new cards") is computed with this.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of t's day in the given location.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysBetween returns the number of calendar day boundaries crossed
// between a and b in the given location. Same-day times yield 0.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	startA := StartOfDay(a, loc)
	startB := StartOfDay(b, loc)
	return int(startB.Sub(startA).Hours() / 24)
}
