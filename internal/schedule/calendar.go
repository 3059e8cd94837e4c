package schedule

import "time"

// Working-day arithmetic. Saturday and Sunday are the only non-working days;
// there is no holiday calendar.

// IsWorkingDay reports whether t falls on a weekday.
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddWorkingDays returns the n-th working day strictly after t. The walk
// advances one calendar day at a time and only stops on a counted weekday,
// so the result is itself always a working day. n <= 0 returns t unchanged.
func AddWorkingDays(t time.Time, n int) time.Time {
	d := t
	counted := 0
	for counted < n {
		d = d.AddDate(0, 0, 1)
		if IsWorkingDay(d) {
			counted++
		}
	}
	return d
}

// SkipToNextWeekday advances t to the next weekday. Idempotent on weekdays.
func SkipToNextWeekday(t time.Time) time.Time {
	d := t
	for !IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// CountWorkingDays counts the weekdays in the half-open range [start, end).
func CountWorkingDays(start, end time.Time) int {
	count := 0
	for d := dateOnly(start); d.Before(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return count
}
