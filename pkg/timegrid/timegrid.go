// Package timegrid holds the clock arithmetic shared by the calendar
// resolver, the slot generator and the reservation coordinator. Times of
// day travel as zero-padded "HH:MM" strings (they sort lexicographically,
// also inside storage filters) and are computed on as minutes since
// midnight; dates travel as "YYYY-MM-DD".
package timegrid

import (
	"fmt"
	"time"
)

const (
	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"

	MinutesPerDay = 24 * 60
)

// ParseClock converts "HH:MM" to minutes since midnight. Unpadded input
// is rejected: time.Parse accepts "9:00", but stored clocks must order
// lexicographically, so only the zero-padded form is a valid clock.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	if clock != t.Format(ClockLayout) {
		return 0, fmt.Errorf("invalid clock %q: must be zero-padded HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a "YYYY-MM-DD" date and returns its midnight in UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// Weekday returns the day of week a "YYYY-MM-DD" date falls on.
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// Overlaps reports whether the half-open minute intervals
// [aStart, aEnd) and [bStart, bEnd) intersect. Back-to-back intervals
// (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// InstantOn anchors a minute-of-day on a date in the given location,
// yielding the absolute instant a slot starts. Lead-time checks compare
// this against the caller-supplied now.
func InstantOn(date string, minute int, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, loc), nil
}
