// Package calendar provides UTC day bucketing for reconciliation periods.
// Every period computation in the ledger operates on UTC day boundaries;
// using local time anywhere upstream corrupts day keys, so callers are
// expected to go through this package instead of truncating on their own.
package calendar

import (
	"math"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// StartOfUTCDay truncates t to UTC midnight. The operation is idempotent.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the inclusive day count between a and b, so
// DaysBetween(d, d) == 1. When a is after b it returns 0.
func DaysBetween(a, b time.Time) int {
	dayA := StartOfUTCDay(a)
	dayB := StartOfUTCDay(b)
	if dayA.After(dayB) {
		return 0
	}
	ms := dayB.Sub(dayA).Milliseconds()
	return int(math.Round(float64(ms)/float64(msPerDay))) + 1
}

// DayKey returns the canonical map key for the day containing t.
func DayKey(t time.Time) string {
	return StartOfUTCDay(t).Format(time.RFC3339)
}

// Days lists every UTC day start in the half-open interval [start, end).
// An empty or inverted interval yields no days.
func Days(start, end time.Time) []time.Time {
	first := StartOfUTCDay(start)
	var days []time.Time
	for cursor := first; cursor.Before(end); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, cursor)
	}
	return days
}
