package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/period"
)

// Sum adds the amounts of txns. An empty slice sums to 0.
func Sum(txns []core.Transaction) float64 {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(decimal.NewFromFloat(t.Amount))
	}
	return total.InexactFloat64()
}

// ContactTotal is the sum of the contact's transactions.
func ContactTotal(s *core.Snapshot, contactID string) float64 {
	return Sum(s.TransactionsOf(contactID))
}

// ProjectTotal is the sum of the members' contact totals.
func ProjectTotal(s *core.Snapshot, projectID string) float64 {
	var txns []core.Transaction
	for _, c := range s.Members(projectID) {
		txns = append(txns, s.TransactionsOf(c.ID)...)
	}
	return Sum(txns)
}

// Buckets groups transactions by month label.
type Buckets struct {
	labels []string
	Groups map[string][]core.Transaction
}

// BucketedTotals assigns each transaction to the bucket matching its month
// label. Transactions outside the given buckets are dropped. Within a bucket
// the input order is kept.
func BucketedTotals(txns []core.Transaction, buckets []string) Buckets {
	return BucketedTotalsIn(txns, buckets, nil)
}

// BucketedTotalsIn is BucketedTotals with every date labelled in loc, the
// zone the buckets were built in. A nil loc labels each date in its own zone.
func BucketedTotalsIn(txns []core.Transaction, buckets []string, loc *time.Location) Buckets {
	b := Buckets{
		labels: append([]string(nil), buckets...),
		Groups: make(map[string][]core.Transaction, len(buckets)),
	}
	known := make(map[string]bool, len(buckets))
	for _, l := range buckets {
		known[l] = true
	}
	for _, t := range txns {
		date := t.Date
		if loc != nil {
			date = date.In(loc)
		}
		label := period.MonthLabel(date)
		if known[label] {
			b.Groups[label] = append(b.Groups[label], t)
		}
	}
	return b
}

// Labels returns every bucket in the order given, empty ones included.
func (b Buckets) Labels() []string {
	return append([]string(nil), b.labels...)
}

// NonEmpty returns the labels that hold transactions, newest first. These
// are the months a jump menu offers.
func (b Buckets) NonEmpty() []string {
	var out []string
	for i := len(b.labels) - 1; i >= 0; i-- {
		if len(b.Groups[b.labels[i]]) > 0 {
			out = append(out, b.labels[i])
		}
	}
	return out
}

// Sections returns the non-empty buckets with their totals, newest first.
func (b Buckets) Sections() []core.MonthSection {
	labels := b.NonEmpty()
	out := make([]core.MonthSection, 0, len(labels))
	for _, l := range labels {
		txns := append([]core.Transaction(nil), b.Groups[l]...)
		out = append(out, core.MonthSection{Label: l, Transactions: txns, Total: Sum(txns)})
	}
	return out
}

// SortByRecency orders contacts by the CurrentDate of their latest
// transaction, most recent first. Contacts without transactions come last
// and keep their relative order.
func SortByRecency(s *core.Snapshot, contacts []core.Contact) []core.Contact {
	out := append([]core.Contact(nil), contacts...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := s.LastActivity(out[i].ID)
		b, bok := s.LastActivity(out[j].ID)
		switch {
		case aok && bok:
			return a.After(b)
		default:
			return aok && !bok
		}
	})
	return out
}

// ContactLines returns each contact with its total, last activity and
// project name, in the order given.
func ContactLines(s *core.Snapshot, contacts []core.Contact) []core.ContactLine {
	out := make([]core.ContactLine, 0, len(contacts))
	for _, c := range contacts {
		line := core.ContactLine{Contact: c, Total: ContactTotal(s, c.ID)}
		line.LastActivity, _ = s.LastActivity(c.ID)
		if p, ok := s.ProjectOf(c.ID); ok {
			line.Project = p.Name
		}
		out = append(out, line)
	}
	return out
}

// ProjectTotals returns each project with its member count and total.
func ProjectTotals(s *core.Snapshot, projects []core.Project) []core.ProjectLine {
	out := make([]core.ProjectLine, 0, len(projects))
	for _, p := range projects {
		out = append(out, core.ProjectLine{
			Project: p,
			Total:   ProjectTotal(s, p.ID),
			Members: len(p.ContactIDs),
		})
	}
	return out
}
