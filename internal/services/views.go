package services

import (
	"context"
	"time"

	"ledger/internal/core"
	"ledger/internal/period"
	"ledger/internal/report"
)

// HomeView is the overview screen: every transaction in the filter grouped
// by month, newest month first.
type HomeView struct {
	Filter   period.Filter
	Sections []core.MonthSection
	// JumpMenu lists the month labels that have transactions, newest first.
	JumpMenu []string
	Total    float64
	Count    int
}

// Section returns the section with the given month label.
func (v HomeView) Section(label string) (core.MonthSection, bool) {
	for _, s := range v.Sections {
		if s.Label == label {
			return s, true
		}
	}
	return core.MonthSection{}, false
}

// PersonView is one contact's ledger.
type PersonView struct {
	Contact      core.Contact
	Project      string
	Filter       period.Filter
	Transactions []core.Transaction // filtered, newest first
	// Proximity classifies each transaction's date against the clock, keyed
	// by transaction id.
	Proximity map[string]period.Proximity
	// Total is the contact's balance over every transaction. FilteredTotal
	// covers only Transactions.
	Total         float64
	FilteredTotal float64
}

// ProjectView is a project with its members' balances.
type ProjectView struct {
	Project core.Project
	Members []core.ContactLine
	Total   float64
	// LastActivity is when the latest payment of any member was added; zero
	// when there is none.
	LastActivity time.Time
}

// HomeView builds the overview for filter. Buckets run from the oldest
// matching transaction to the later of now and the newest one.
func (s *LedgerService) HomeView(ctx context.Context, filter period.Filter) (HomeView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return HomeView{}, err
	}
	now := s.now()

	txns := report.SortByDateDescending(
		report.SelectPeriod(s.calendar, snap.Transactions(), filter, now))
	view := HomeView{Filter: filter, Count: len(txns), Total: report.Sum(txns)}
	if len(txns) == 0 {
		return view, nil
	}

	// Buckets and labels both use now's zone.
	loc := now.Location()
	newest, oldest := txns[0].Date, txns[len(txns)-1].Date
	end := now
	if newest.After(end) {
		end = newest
	}
	buckets := report.BucketedTotalsIn(txns, period.MonthBuckets(oldest.In(loc), end.In(loc)), loc)
	view.Sections = buckets.Sections()
	view.JumpMenu = buckets.NonEmpty()
	return view, nil
}

// PersonView builds the ledger of one contact, filtered by period and by
// a title or long-date query.
func (s *LedgerService) PersonView(ctx context.Context, contactID string, filter period.Filter, query string) (PersonView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return PersonView{}, err
	}
	c, ok := snap.Contact(contactID)
	if !ok {
		return PersonView{}, core.NotFound("contact", contactID)
	}

	all := snap.TransactionsOf(c.ID)
	txns := report.SortByDateDescending(
		report.Search(report.SelectPeriod(s.calendar, all, filter, s.now()), query))
	view := PersonView{
		Contact:       c,
		Filter:        filter,
		Transactions:  txns,
		Proximity:     make(map[string]period.Proximity, len(txns)),
		Total:         report.Sum(all),
		FilteredTotal: report.Sum(txns),
	}
	for _, t := range txns {
		view.Proximity[t.ID] = s.Relative(t.Date)
	}
	if p, ok := snap.ProjectOf(c.ID); ok {
		view.Project = p.Name
	}
	return view, nil
}

// PeopleView lists contacts whose name starts with query, most recently
// active first.
func (s *LedgerService) PeopleView(ctx context.Context, query string) ([]core.ContactLine, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	contacts := report.SortByRecency(snap, report.SearchContacts(snap.Contacts(), query))
	return report.ContactLines(snap, contacts), nil
}

// ProjectsView lists projects whose name contains query.
func (s *LedgerService) ProjectsView(ctx context.Context, query string) ([]core.ProjectLine, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.ProjectTotals(snap, report.SearchProjects(snap.Projects(), query)), nil
}

// ProjectView shows a project's members in member order.
func (s *LedgerService) ProjectView(ctx context.Context, projectID string) (ProjectView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ProjectView{}, err
	}
	p, ok := snap.Project(projectID)
	if !ok {
		return ProjectView{}, core.NotFound("project", projectID)
	}
	view := ProjectView{
		Project: p,
		Members: report.ContactLines(snap, snap.Members(p.ID)),
		Total:   report.ProjectTotal(snap, p.ID),
	}
	for _, m := range view.Members {
		if m.LastActivity.After(view.LastActivity) {
			view.LastActivity = m.LastActivity
		}
	}
	return view, nil
}

// UnassignedContacts lists the contacts a new project can pick from: those
// in no project whose name starts with query, most recently active first.
func (s *LedgerService) UnassignedContacts(ctx context.Context, query string) ([]core.ContactLine, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	contacts := report.SortByRecency(snap, report.SearchContacts(report.Unassigned(snap), query))
	return report.ContactLines(snap, contacts), nil
}

// Relative classifies date against the service clock, for labels such as
// "this week".
func (s *LedgerService) Relative(date time.Time) period.Proximity {
	return s.calendar.Classify(date, s.now())
}
