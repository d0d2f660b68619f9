package utils

import (
	"time"
)

// DateLayout is the calendar-day format used in API payloads.
const DateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastNDays returns the start of each of the last n calendar days, oldest first, ending with today.
func LastNDays(now time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	today := StartOfDay(now)
	for i := n - 1; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i))
	}
	return days
}
