// Package ui renders ledger views as terminal text.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"ledger/internal/format"
)

const width = 60

// Printer writes coloured text for one locale.
type Printer struct {
	out    io.Writer
	locale format.Locale
	now    func() time.Time

	green  *color.Color
	yellow *color.Color
	blue   *color.Color
	red    *color.Color
	bold   *color.Color
}

// New returns a printer that colours output unless colour is disabled
// globally (for example when out is not a terminal).
func New(out io.Writer, loc format.Locale) *Printer {
	return &Printer{
		out:    out,
		locale: loc,
		now:    time.Now,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		blue:   color.New(color.FgBlue),
		red:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
}

// NewPlain returns a printer that never emits colour codes.
func NewPlain(out io.Writer, loc format.Locale) *Printer {
	p := New(out, loc)
	for _, c := range []*color.Color{p.green, p.yellow, p.blue, p.red, p.bold} {
		c.DisableColor()
	}
	return p
}

// WithClock sets the reference time for relative dates such as "3 days ago".
func (p *Printer) WithClock(now func() time.Time) *Printer {
	p.now = now
	return p
}

func (p *Printer) relative(t time.Time) string {
	return humanize.RelTime(t, p.now(), "ago", "from now")
}

// Header prints a formatted header
func (p *Printer) Header(text string) {
	line := strings.Repeat("=", width)
	p.green.Fprintf(p.out, "%s\n", line)
	p.green.Fprintf(p.out, "%s\n", center(text, width))
	p.green.Fprintf(p.out, "%s\n", line)
}

// Section prints a sub-heading with a right-aligned amount.
func (p *Printer) Section(title string, amount float64) {
	p.bold.Fprintf(p.out, "\n%s", title)
	fmt.Fprintf(p.out, "  %s\n", p.Amount(amount))
}

// Step prints a step indicator
func (p *Printer) Step(stepNum, totalSteps int, text string) {
	p.yellow.Fprintf(p.out, "[%d/%d] %s\n", stepNum, totalSteps, text)
}

// Success prints a success message
func (p *Printer) Success(text string) {
	p.green.Fprintf(p.out, "  → %s\n", text)
}

// Info prints an info message
func (p *Printer) Info(text string) {
	fmt.Fprintf(p.out, "  → %s\n", text)
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	p.yellow.Fprintf(p.out, "  ⚠ %s\n", text)
}

// Error prints an error message
func (p *Printer) Error(text string) {
	p.red.Fprintf(p.out, "Error: %s\n", text)
}

// Amount formats v for the printer's locale: red when negative, green when
// positive.
func (p *Printer) Amount(v float64) string {
	s := format.Money(v, p.locale)
	switch {
	case v < 0:
		return p.red.Sprint(s)
	case v > 0:
		return p.green.Sprint(s)
	}
	return s
}

// Muted renders secondary text such as dates.
func (p *Printer) Muted(s string) string {
	return p.blue.Sprint(s)
}

// Table prints tab-aligned rows under a header row.
func (p *Printer) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// center centers text within a given width
func center(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}
