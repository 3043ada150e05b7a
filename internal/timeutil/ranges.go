// Package timeutil produces the calendar ranges, bucket keys, and
// display labels the statistics engine works over. Functions that depend
// on "today" take now explicitly so callers control the clock and the
// timezone; all math stays in now's location.
package timeutil

import (
	"fmt"
	"time"
)

// Range is a contiguous, inclusive span of calendar days with a
// display label.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Labels for the two most recent periods are relative; older ones are
// absolute. The product ships in French.
const (
	LabelThisWeek  = "Cette semaine"
	LabelLastWeek  = "Semaine dernière"
	LabelThisMonth = "Ce mois-ci"
	LabelLastMonth = "Le mois dernier"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns midnight of the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := int(day.Weekday()) - 1
	if offset < 0 {
		offset = 6 // Sunday belongs to the week that started the previous Monday
	}
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DateKey formats t as an ISO calendar date, the key daily buckets are
// grouped under.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// LastNDays returns the last n calendar days ending on now's day, oldest
// first, each at midnight. n <= 0 yields an empty slice.
func LastNDays(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	today := StartOfDay(now)
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i))
	}
	return days
}

// WeekRanges returns n consecutive Monday–Sunday weeks ending with the
// week containing now, most recent last.
func WeekRanges(now time.Time, n int) []Range {
	if n <= 0 {
		return nil
	}
	currentWeek := StartOfWeek(now)
	ranges := make([]Range, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := currentWeek.AddDate(0, 0, -7*i)
		ranges = append(ranges, Range{
			Start: start,
			End:   EndOfDay(start.AddDate(0, 0, 6)),
			Label: weekLabel(i),
		})
	}
	return ranges
}

// MonthRanges returns n consecutive calendar months ending with the
// month containing now, most recent last. Month arithmetic anchors to
// the first of the month, so variable month lengths and year rollover
// cannot drift.
func MonthRanges(now time.Time, n int) []Range {
	if n <= 0 {
		return nil
	}
	currentMonth := StartOfMonth(now)
	ranges := make([]Range, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := currentMonth.AddDate(0, -i, 0)
		ranges = append(ranges, Range{
			Start: start,
			End:   EndOfDay(start.AddDate(0, 1, -1)),
			Label: monthLabel(start, i),
		})
	}
	return ranges
}

// InRange reports whether t falls within [start, end], bounds included.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// FormatDayMonth renders t as "D/M", the short form used in chart axes
// and exports.
func FormatDayMonth(t time.Time) string {
	return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
}

// FormatRange renders a date span as "D/M - D/M".
func FormatRange(start, end time.Time) string {
	return FormatDayMonth(start) + " - " + FormatDayMonth(end)
}

// MonthName returns the French name of m.
func MonthName(m time.Month) string {
	return frenchMonths[m-1]
}

func weekLabel(weeksAgo int) string {
	switch weeksAgo {
	case 0:
		return LabelThisWeek
	case 1:
		return LabelLastWeek
	default:
		return fmt.Sprintf("Il y a %d semaines", weeksAgo)
	}
}

func monthLabel(start time.Time, monthsAgo int) string {
	switch monthsAgo {
	case 0:
		return LabelThisMonth
	case 1:
		return LabelLastMonth
	default:
		return fmt.Sprintf("%s %d", MonthName(start.Month()), start.Year())
	}
}
