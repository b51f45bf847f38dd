// Package report computes the filtered, ordered and summed views shown by
// the front ends. Every function is pure: it reads a snapshot or a slice and
// a caller-supplied "now", and returns new slices.
package report

import (
	"sort"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/period"
)

// SelectPeriod keeps the transactions whose Date falls in filter around now,
// preserving their order.
func SelectPeriod(cal period.Calendar, txns []core.Transaction, filter period.Filter, now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if cal.Contains(filter, t.Date, now) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDateDescending returns the transactions newest Date first. Equal dates
// keep their relative order.
func SortByDateDescending(txns []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Search keeps transactions whose title contains query, case-sensitively, or
// whose long date ("January 2, 2006") contains it. An empty query keeps all.
func Search(txns []core.Transaction, query string) []core.Transaction {
	if query == "" {
		return append([]core.Transaction(nil), txns...)
	}
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if strings.Contains(t.Title, query) || strings.Contains(format.LongDate(t.Date), query) {
			out = append(out, t)
		}
	}
	return out
}

// SearchContacts keeps contacts whose name starts with query, ignoring case.
func SearchContacts(contacts []core.Contact, query string) []core.Contact {
	key := core.NameKey(query)
	out := make([]core.Contact, 0, len(contacts))
	for _, c := range contacts {
		if key == "" || strings.HasPrefix(core.NameKey(c.Name), key) {
			out = append(out, c)
		}
	}
	return out
}

// SearchProjects keeps projects whose name contains query.
func SearchProjects(projects []core.Project, query string) []core.Project {
	out := make([]core.Project, 0, len(projects))
	for _, p := range projects {
		if query == "" || strings.Contains(p.Name, query) {
			out = append(out, p)
		}
	}
	return out
}

// Unassigned returns the contacts that belong to no project, in creation
// order.
func Unassigned(s *core.Snapshot) []core.Contact {
	var out []core.Contact
	for _, c := range s.Contacts() {
		if _, ok := s.ProjectOf(c.ID); !ok {
			out = append(out, c)
		}
	}
	return out
}
