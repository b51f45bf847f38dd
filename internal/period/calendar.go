// Package period groups dates into calendar months and relates them to a
// reference "now". Nothing in this package reads the system clock.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Proximity is how close a date is to a reference time in calendar terms.
type Proximity int

const (
	Other Proximity = iota
	SameYear
	SameMonth
	SameWeek
)

func (p Proximity) String() string {
	switch p {
	case SameWeek:
		return "same week"
	case SameMonth:
		return "same month"
	case SameYear:
		return "same year"
	default:
		return "other"
	}
}

// Calendar carries the conventions used for week boundaries.
// Month and year boundaries are always Gregorian.
type Calendar struct {
	WeekStart time.Weekday
}

// Gregorian is the calendar used when none is configured. Weeks start on Sunday.
var Gregorian = Calendar{WeekStart: time.Sunday}

// ParseWeekday accepts English weekday names ("monday", "Mon").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// StartOfWeek returns midnight of the first day of t's week, in t's location.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// SameWeek reports whether date falls in the calendar week containing now.
func (c Calendar) SameWeek(date, now time.Time) bool {
	date = date.In(now.Location())
	return c.StartOfWeek(date).Equal(c.StartOfWeek(now))
}

func (c Calendar) SameMonth(date, now time.Time) bool {
	date = date.In(now.Location())
	return date.Year() == now.Year() && date.Month() == now.Month()
}

func (c Calendar) SameYear(date, now time.Time) bool {
	return date.In(now.Location()).Year() == now.Year()
}

// Classify returns the narrowest calendar period around now that contains
// date. A week that straddles a month boundary still reports SameWeek, so
// callers that need month membership should ask SameMonth directly.
func (c Calendar) Classify(date, now time.Time) Proximity {
	switch {
	case c.SameWeek(date, now):
		return SameWeek
	case c.SameMonth(date, now):
		return SameMonth
	case c.SameYear(date, now):
		return SameYear
	default:
		return Other
	}
}

// Classify uses the Gregorian calendar.
func Classify(date, now time.Time) Proximity {
	return Gregorian.Classify(date, now)
}
