package ledger

import "time"

// midnight truncates t to the start of its day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SundayStart returns the Sunday that opens the week containing d.
// A date that itself falls on Sunday IS the start of its window.
func SundayStart(d time.Time) time.Time {
	day := midnight(d)
	if day.Weekday() == time.Sunday {
		return day
	}
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// HistoryWeekStart returns the start of the asset-history weekly window.
// Unlike SundayStart, a Sunday date rolls back a full week; the reference
// history window is anchored on the previous Sunday in that case.
func HistoryWeekStart(d time.Time) time.Time {
	day := midnight(d)
	back := int(day.Weekday())
	if back == 0 {
		back = 7
	}
	return day.AddDate(0, 0, -back)
}

// MonthStart returns the first day of d's month.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}

// MonthEnd returns the last day of d's month at midnight.
func MonthEnd(d time.Time) time.Time {
	return MonthStart(d).AddDate(0, 1, -1)
}
