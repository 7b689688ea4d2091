package week

import (
	"fmt"
	"time"
)

// Context identifies the calendar week a date falls in. Weeks follow the
// ISO-8601 convention: Monday start, keys like "2024-W05". Keys are stable
// and order lexicographically in week order, within and across years.
type Context struct {
	WeekKey       string    `json:"week_key"`
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"`
	IsCurrentWeek bool      `json:"is_current_week"`
}

// Resolve maps a calendar date to its week context. It is deterministic in
// the date; now is only consulted to compute IsCurrentWeek.
func Resolve(date, now time.Time) Context {
	start := startOfWeek(date)
	return Context{
		WeekKey:       Key(date),
		WeekStart:     start,
		WeekEnd:       start.AddDate(0, 0, 6),
		IsCurrentWeek: Key(now.In(date.Location())) == Key(date),
	}
}

// Key returns the stable week key for a date. Two dates yield the same key
// iff they fall in the same ISO week.
func Key(date time.Time) string {
	year, wk := startOfWeek(date).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// ParseKey validates a week key and returns its ISO year and week number.
func ParseKey(key string) (int, int, error) {
	var year, wk int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &wk); err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q", key)
	}
	if len(key) != 8 || wk < 1 || wk > 53 {
		return 0, 0, fmt.Errorf("invalid week key %q", key)
	}
	return year, wk, nil
}

// startOfWeek truncates a date to the Monday of its week at midnight.
func startOfWeek(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
