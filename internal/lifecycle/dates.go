// internal/lifecycle/dates.go
package lifecycle

import "time"

// DateLayout is the ISO date format used for dateOfSubmission and
// renewalDueOn.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date, reporting validity. Empty strings and the
// legacy "N/A" marker are invalid.
func ParseDate(s string) (time.Time, bool) {
	if s == "" || s == "N/A" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AddYears advances a date by whole calendar years, keeping the month and
// day. A 29 Feb source date clamps to 28 Feb when the target year is not a
// leap year, rather than overflowing into March.
func AddYears(t time.Time, years int) time.Time {
	target := t.Year() + years
	if t.Month() == time.February && t.Day() == 29 && !isLeapYear(target) {
		return time.Date(target, time.February, 28, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t.AddDate(years, 0, 0)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// truncateToDate drops the time-of-day component for date comparisons.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
