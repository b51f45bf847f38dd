package period

import (
	"fmt"
	"strings"
	"time"
)

// Filter is a coarse relative-time selector.
type Filter string

const (
	All       Filter = "All"
	ThisWeek  Filter = "This Week"
	ThisMonth Filter = "This Month"
	ThisYear  Filter = "This Year"
)

// Filters lists the selectors in menu order.
func Filters() []Filter {
	return []Filter{All, ThisWeek, ThisMonth, ThisYear}
}

// ParseFilter accepts menu labels and their short forms ("week", "month").
// An empty string selects All.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "", "all":
		return All, nil
	case "this week", "week":
		return ThisWeek, nil
	case "this month", "month":
		return ThisMonth, nil
	case "this year", "year":
		return ThisYear, nil
	}
	return All, fmt.Errorf("unknown period filter %q", s)
}

// Matcher decides whether a date belongs to a period relative to now.
type Matcher interface {
	Matches(cal Calendar, date, now time.Time) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(cal Calendar, date, now time.Time) bool

func (f MatcherFunc) Matches(cal Calendar, date, now time.Time) bool { return f(cal, date, now) }

var matchers = map[Filter]Matcher{
	All:       MatcherFunc(func(Calendar, time.Time, time.Time) bool { return true }),
	ThisWeek:  MatcherFunc(Calendar.SameWeek),
	ThisMonth: MatcherFunc(Calendar.SameMonth),
	ThisYear:  MatcherFunc(Calendar.SameYear),
}

// GetMatcher returns the matcher registered for f.
func GetMatcher(f Filter) (Matcher, error) {
	m, ok := matchers[f]
	if !ok {
		return nil, fmt.Errorf("no matcher for period filter %q", f)
	}
	return m, nil
}

// RegisterMatcher adds or replaces the matcher for f.
func RegisterMatcher(f Filter, m Matcher) {
	matchers[f] = m
}

// Contains reports whether date falls in the period f around now.
// Unknown filters match nothing.
func (c Calendar) Contains(f Filter, date, now time.Time) bool {
	m, err := GetMatcher(f)
	if err != nil {
		return false
	}
	return m.Matches(c, date, now)
}
