package ui

import (
	"fmt"
	"strings"

	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/onboarding"
	"ledger/internal/period"
	"ledger/internal/services"
)

func (p *Printer) money(v float64) string {
	return format.Money(v, p.locale)
}

// Home prints the month sections of the overview. When month is set only
// that section is printed.
func (p *Printer) Home(view services.HomeView, month string) error {
	p.Header(fmt.Sprintf("Ledger · %s", view.Filter))
	if len(view.Sections) == 0 {
		p.Info("No transactions")
		return nil
	}
	fmt.Fprintf(p.out, "Total %s over %d transactions\n", p.Amount(view.Total), view.Count)
	fmt.Fprintf(p.out, "Months: %s\n", strings.Join(view.JumpMenu, ", "))

	sections := view.Sections
	if month != "" {
		s, ok := view.Section(month)
		if !ok {
			p.Warning(fmt.Sprintf("no transactions in %s", month))
			return nil
		}
		sections = []core.MonthSection{s}
	}
	for _, s := range sections {
		p.Section(s.Label, s.Total)
		if err := p.transactions(s.Transactions, nil); err != nil {
			return err
		}
	}
	return nil
}

// transactions prints one row per transaction. when, if set, adds a column
// between the amount and the id.
func (p *Printer) transactions(txns []core.Transaction, when func(core.Transaction) string) error {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		row := []string{format.LongDate(t.Date), t.Title, p.money(t.Amount)}
		if when != nil {
			row = append(row, when(t))
		}
		rows = append(rows, append(row, t.ID))
	}
	return p.Table(nil, rows)
}

func proximityLabel(px period.Proximity) string {
	switch px {
	case period.SameWeek:
		return "this week"
	case period.SameMonth:
		return "this month"
	case period.SameYear:
		return "this year"
	default:
		return ""
	}
}

// Person prints one contact's ledger.
func (p *Printer) Person(view services.PersonView) error {
	p.Header(view.Contact.Name)
	if view.Project != "" {
		p.Info("Project: " + view.Project)
	}
	fmt.Fprintf(p.out, "Balance %s\n", p.Amount(view.Total))
	if len(view.Transactions) == 0 {
		p.Info("No transactions")
		return nil
	}
	p.Section(string(view.Filter), view.FilteredTotal)
	return p.transactions(view.Transactions, func(t core.Transaction) string {
		return proximityLabel(view.Proximity[t.ID])
	})
}

// People prints contacts with their balances.
func (p *Printer) People(lines []core.ContactLine) error {
	p.Header("People")
	if len(lines) == 0 {
		p.Info("No people")
		return nil
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		last := "never"
		if !l.LastActivity.IsZero() {
			last = p.relative(l.LastActivity)
		}
		project := l.Project
		if project == "" {
			project = "-"
		}
		rows = append(rows, []string{l.Contact.Name, p.money(l.Total), project, last})
	}
	return p.Table([]string{"NAME", "BALANCE", "PROJECT", "LAST ACTIVITY"}, rows)
}

// Projects prints projects with their totals.
func (p *Printer) Projects(lines []core.ProjectLine) error {
	p.Header("Projects")
	if len(lines) == 0 {
		p.Info("No projects")
		return nil
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Project.Name, fmt.Sprint(l.Members), p.money(l.Total)})
	}
	return p.Table([]string{"NAME", "MEMBERS", "TOTAL"}, rows)
}

// Project prints a project and its members.
func (p *Printer) Project(view services.ProjectView) error {
	p.Header(view.Project.Name)
	fmt.Fprintf(p.out, "Total %s\n", p.Amount(view.Total))
	if view.LastActivity.IsZero() {
		p.Info("No payments yet")
	} else {
		p.Info("Last payment added " + p.relative(view.LastActivity))
	}
	if len(view.Members) == 0 {
		p.Info("No members")
		return nil
	}
	rows := make([][]string, 0, len(view.Members))
	for _, m := range view.Members {
		rows = append(rows, []string{m.Contact.Name, p.money(m.Total)})
	}
	return p.Table([]string{"MEMBER", "BALANCE"}, rows)
}

// Onboarding prints the current walkthrough page.
func (p *Printer) Onboarding(s onboarding.State) {
	page, ok := s.Current()
	if !ok {
		p.Success("Onboarding complete")
		return
	}
	p.Step(s.Page, s.Total, page.Title)
	fmt.Fprintf(p.out, "%s\n", page.Description)
	fmt.Fprintf(p.out, "%s\n", progressBar(s.Progress(), 20))
}

func progressBar(fraction float64, size int) string {
	filled := int(fraction*float64(size) + 0.5)
	if filled > size {
		filled = size
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", size-filled) + "]"
}

// Locales prints the known locale descriptors.
func (p *Printer) Locales(locales []format.Locale) error {
	rows := make([][]string, 0, len(locales))
	for _, l := range locales {
		rows = append(rows, []string{l.Tag.String(), l.Currency.String(), format.Money(250000, l)})
	}
	return p.Table([]string{"LOCALE", "CURRENCY", "EXAMPLE"}, rows)
}
