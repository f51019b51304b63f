package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate indicates a date string that is not in YYYY-MM-DD form.
var ErrBadDate = errors.New("malformed date")

const dateLayout = "2006-01-02"

// ParseLocal parses a YYYY-MM-DD string as midnight in time.Local.
// The string is never interpreted as UTC, so the calendar day it names is
// the calendar day returned regardless of the host timezone.
// Out-of-range month or day parts roll over the way time.Date normalizes them.
func ParseLocal(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		nums[i] = n
	}

	return time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.Local), nil
}

// YMD formats t as a zero-padded YYYY-MM-DD string.
func YMD(t time.Time) string {
	return t.Format(dateLayout)
}

// normalize round-trips s through ParseLocal and YMD. Unparseable input is
// returned untouched so string comparisons still behave deterministically.
func normalize(s string) string {
	t, err := ParseLocal(s)
	if err != nil {
		return s
	}
	return YMD(t)
}

// mustParse is ParseLocal for strings that already went through normalize.
func mustParse(s string) time.Time {
	t, err := ParseLocal(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FirstOfMonth returns midnight on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DayOfWeek returns the Monday-first weekday index: 0=Mon .. 6=Sun.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// AddMonths returns the first day of the month n months away from t.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// FormatMonthYear renders t as "January 2026".
func FormatMonthYear(t time.Time) string {
	return t.Format("January 2006")
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddBusinessDays steps forward one calendar day at a time until n Mon-Fri
// days have been counted. AddBusinessDays(d, 0) returns d unchanged.
func AddBusinessDays(from time.Time, n int) time.Time {
	d := from
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			added++
		}
	}
	return d
}

// CountBusinessDays counts Mon-Fri days in (from, to]: from is excluded,
// to is included. It returns 0 when to is not after from.
func CountBusinessDays(from, to time.Time) int {
	d := startOfDay(from)
	end := startOfDay(to)
	count := 0
	for d.Before(end) {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			count++
		}
	}
	return count
}

// NextTuesday returns the earliest date on or after from that is a Tuesday.
func NextTuesday(from time.Time) time.Time {
	d := startOfDay(from)
	for d.Weekday() != time.Tuesday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// daysBetween returns the whole number of calendar days from a to b.
// Civil dates are compared in UTC so DST transitions never shave an hour.
// Unix seconds keep spans wider than a time.Duration exact.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / 86400)
}

// shiftDays moves a YYYY-MM-DD date by n calendar days.
func shiftDays(s string, n int) string {
	return YMD(mustParse(s).AddDate(0, 0, n))
}
