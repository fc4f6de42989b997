package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// DayStartUTC truncates t to the start of its UTC calendar day. Day-boundary
// logic across the pipeline uses UTC; "today" and "last updated" share one clock.
func DayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LookbackWindow returns [dayStart-days, dayStart) for the UTC day containing
// now. The current day is excluded.
func LookbackWindow(now time.Time, days int) (time.Time, time.Time) {
	end := DayStartUTC(now)
	return end.AddDate(0, 0, -days), end
}

// DateUTC formats t as the provider's YYYY-MM-DD date string in UTC.
func DateUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
