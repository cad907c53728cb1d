package utils

import "time"

// DateLayout is the wire format of a civil date.
const DateLayout = "2006-01-02"

// DateOf returns the civil date of t, taken in t's own location, as midnight UTC.
// Every date handled by the analytics layer is normalized this way so that it
// compares equal to DATE columns scanned by pgx.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// AddDays shifts a civil date by n calendar days.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// IsWorkday reports whether date falls on Monday to Friday.
func IsWorkday(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WeekdayIndex maps Monday to 0 and Sunday to 6.
func WeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WeekStart returns the Monday of date's week.
func WeekStart(date time.Time) time.Time {
	return AddDays(DateOf(date), -WeekdayIndex(date))
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
