package calendar

import "time"

// usHolidays lists major US market holidays as MM-DD strings. Matched by
// date only; observed/moving-holiday rules are out of scope.
var usHolidays = []string{
	"01-01", "01-20", "02-17", "04-18", "05-26",
	"06-19", "07-04", "09-01", "11-27", "12-25", "12-31",
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsUSHoliday reports whether t's month and day match a fixed US holiday,
// regardless of weekday.
func IsUSHoliday(t time.Time) bool {
	md := t.Format("01-02")
	for _, h := range usHolidays {
		if h == md {
			return true
		}
	}
	return false
}
