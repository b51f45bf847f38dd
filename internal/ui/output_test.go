package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/onboarding"
	"ledger/internal/period"
	"ledger/internal/services"
)

func usd(t *testing.T) format.Locale {
	t.Helper()
	reg, err := format.NewRegistry()
	require.NoError(t, err)
	loc, err := reg.Lookup("en-US")
	require.NoError(t, err)
	return loc
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  ab", center("ab", 6))
	assert.Equal(t, "abcdef", center("abcdef", 4))
}

func TestPlainPrinterHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t))
	p.Header("People")
	p.Error("boom")
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Error: boom")
	assert.Equal(t, "-$ 50.50", p.Amount(-50.5))
}

func TestHomeRendering(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t))
	date := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)
	view := services.HomeView{
		Filter: period.All,
		Sections: []core.MonthSection{{
			Label:        "Feb 2024",
			Transactions: []core.Transaction{{ID: "t1", Title: "Cinema", Amount: 12, Date: date}},
			Total:        12,
		}},
		JumpMenu: []string{"Feb 2024"},
		Total:    12,
		Count:    1,
	}

	require.NoError(t, p.Home(view, ""))
	out := buf.String()
	assert.Contains(t, out, "Ledger · All")
	assert.Contains(t, out, "Months: Feb 2024")
	assert.Contains(t, out, "February 2, 2024")
	assert.Contains(t, out, "$ 12.00")

	buf.Reset()
	require.NoError(t, p.Home(view, "Mar 2024"))
	assert.Contains(t, buf.String(), "no transactions in Mar 2024")
}

func TestPeopleTableAligns(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t))
	require.NoError(t, p.People([]core.ContactLine{
		{Contact: core.Contact{Name: "Alice"}, Total: 512, Project: "Trip"},
		{Contact: core.Contact{Name: "Bo"}, Total: -3},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "Bo     "), "got %q", last)
	assert.Contains(t, last, "never")
}

func TestOnboardingRendering(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t))
	p.Onboarding(onboarding.New())
	assert.Contains(t, buf.String(), "[1/4] Get Started")
	assert.Contains(t, buf.String(), "[#####---------------]")

	buf.Reset()
	p.Onboarding(onboarding.New().Skip())
	assert.Contains(t, buf.String(), "Onboarding complete")
}

func TestRelativeDates(t *testing.T) {
	now := time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t)).WithClock(func() time.Time { return now })

	require.NoError(t, p.People([]core.ContactLine{
		{Contact: core.Contact{Name: "Alice"}, Total: 5, LastActivity: now.AddDate(0, 0, -3)},
	}))
	assert.Contains(t, buf.String(), "3 days ago")

	buf.Reset()
	require.NoError(t, p.Project(services.ProjectView{
		Project:      core.Project{Name: "Trip"},
		Members:      []core.ContactLine{{Contact: core.Contact{Name: "Alice"}, Total: 5}},
		Total:        5,
		LastActivity: now.Add(-2 * time.Hour),
	}))
	assert.Contains(t, buf.String(), "Last payment added 2 hours ago")

	buf.Reset()
	require.NoError(t, p.Project(services.ProjectView{Project: core.Project{Name: "Empty"}}))
	assert.Contains(t, buf.String(), "No payments yet")
}

func TestPersonShowsProximity(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, usd(t))
	date := time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Person(services.PersonView{
		Contact: core.Contact{Name: "Bob"},
		Filter:  period.All,
		Transactions: []core.Transaction{
			{ID: "t1", Title: "Coffee", Amount: 3, Date: date},
			{ID: "t2", Title: "Rent", Amount: 500, Date: date.AddDate(-1, 0, 0)},
		},
		Proximity:     map[string]period.Proximity{"t1": period.SameWeek, "t2": period.Other},
		Total:         503,
		FilteredTotal: 503,
	}))
	lines := strings.Split(buf.String(), "\n")
	var coffee, rent string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "Coffee"):
			coffee = l
		case strings.Contains(l, "Rent"):
			rent = l
		}
	}
	assert.Contains(t, coffee, "this week")
	assert.NotContains(t, rent, "this")
}
