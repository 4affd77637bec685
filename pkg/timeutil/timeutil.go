// Package timeutil provides timezone utilities for Cairo timezone (UTC+2).
// Complaint timestamps, suspension records and the activity window are all
// presented in the students' local time.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// CairoTZ is the Cairo timezone (UTC+2, fixed offset).
var CairoTZ = time.FixedZone("Africa/Cairo", 2*60*60)

// Now returns the current time in Cairo timezone.
func Now() time.Time {
	return time.Now().In(CairoTZ)
}

// ToCairo converts a time to Cairo timezone.
func ToCairo(t time.Time) time.Time {
	return t.In(CairoTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// StartOfDay returns the start of the day (00:00:00) in Cairo timezone.
func StartOfDay(t time.Time) time.Time {
	cairo := ToCairo(t)
	return time.Date(cairo.Year(), cairo.Month(), cairo.Day(), 0, 0, 0, 0, CairoTZ)
}

// DaysSince calculates the number of whole days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// WithinDays reports whether t falls inside the trailing window of the
// given number of days, measured from now.
func WithinDays(t time.Time, days int) bool {
	if t.IsZero() {
		return false
	}
	return Now().Sub(ToCairo(t)) <= time.Duration(days)*24*time.Hour
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// FormatCairo formats a time in Cairo timezone with the given layout.
func FormatCairo(t time.Time, layout string) string {
	return ToCairo(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Cairo timezone.
func FormatDateStr(t time.Time) string {
	return FormatCairo(t, FormatDate)
}

// FormatDateTimeStr formats a time as datetime string in Cairo timezone.
func FormatDateTimeStr(t time.Time) string {
	return FormatCairo(t, FormatDateTimeSeconds)
}

// ParseCairo parses a time string in Cairo timezone.
func ParseCairo(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, CairoTZ)
}

// IsSameDay checks if two times are on the same day in Cairo timezone.
func IsSameDay(t1, t2 time.Time) bool {
	c1, c2 := ToCairo(t1), ToCairo(t2)
	return c1.Year() == c2.Year() && c1.YearDay() == c2.YearDay()
}
