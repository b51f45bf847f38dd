// Package onboarding tracks the introductory walkthrough shown before the
// ledger is first used.
package onboarding

import (
	"context"
	"fmt"
	"strconv"

	"ledger/internal/storage"
)

// SettingKey is the settings key that stores the current page.
const SettingKey = "onboarding.page"

// Page is one walkthrough screen.
type Page struct {
	Title       string
	Description string
}

// Pages are the walkthrough screens in order.
var Pages = []Page{
	{
		Title:       "Get Started",
		Description: "Record transactions with other people and keep track of your payments.",
	},
	{
		Title:       "Record Payments",
		Description: "Add a transaction for every payment. Use negative amounts for payments you received.",
	},
	{
		Title:       "Maintain Contacts",
		Description: "Payments are sorted by contact. Add more contacts whenever you want.",
	},
	{
		Title:       "Create Groups",
		Description: "Group contacts into projects to see the total paid to the whole group.",
	},
}

// State is the walkthrough position. Page runs from 1 to Total; Total+1
// means the walkthrough is finished.
type State struct {
	Page  int
	Total int
}

// New returns a walkthrough on its first page.
func New() State {
	return State{Page: 1, Total: len(Pages)}
}

func (s State) clamp() State {
	if s.Total < 0 {
		s.Total = 0
	}
	switch {
	case s.Page < 1:
		s.Page = 1
	case s.Page > s.Total+1:
		s.Page = s.Total + 1
	}
	return s
}

// Next moves forward one page.
func (s State) Next() State {
	s.Page++
	return s.clamp()
}

// Back moves back one page, stopping at the first.
func (s State) Back() State {
	s.Page--
	return s.clamp()
}

// Skip finishes the walkthrough.
func (s State) Skip() State {
	s.Page = s.Total + 1
	return s
}

// Reset returns to the first page.
func (s State) Reset() State {
	s.Page = 1
	return s.clamp()
}

// Done reports whether every page has been seen.
func (s State) Done() bool {
	return s.Page > s.Total
}

// Progress is the fraction of pages reached, in [0, 1].
func (s State) Progress() float64 {
	if s.Total == 0 {
		return 1
	}
	if s.Done() {
		return 1
	}
	return float64(s.Page) / float64(s.Total)
}

// Current returns the page being shown. ok is false once Done.
func (s State) Current() (page Page, ok bool) {
	if s.Done() || s.Page < 1 || s.Page > len(Pages) {
		return Page{}, false
	}
	return Pages[s.Page-1], true
}

// Tracker persists the walkthrough position in the store settings.
type Tracker struct {
	settings storage.SettingsStore
}

func NewTracker(settings storage.SettingsStore) *Tracker {
	return &Tracker{settings: settings}
}

// Load returns the saved state, or a fresh one when nothing was saved.
// An unreadable value also starts over.
func (t *Tracker) Load(ctx context.Context) (State, error) {
	v, ok, err := t.settings.Setting(ctx, SettingKey)
	if err != nil {
		return State{}, fmt.Errorf("load onboarding state: %w", err)
	}
	s := New()
	if !ok {
		return s, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil {
		return s, nil
	}
	s.Page = page
	return s.clamp(), nil
}

// Save stores the state's page.
func (t *Tracker) Save(ctx context.Context, s State) error {
	if err := t.settings.PutSetting(ctx, SettingKey, strconv.Itoa(s.clamp().Page)); err != nil {
		return fmt.Errorf("save onboarding state: %w", err)
	}
	return nil
}

// Apply loads the state, runs step on it and saves the result.
func (t *Tracker) Apply(ctx context.Context, step func(State) State) (State, error) {
	s, err := t.Load(ctx)
	if err != nil {
		return State{}, err
	}
	s = step(s)
	if err := t.Save(ctx, s); err != nil {
		return State{}, err
	}
	return s, nil
}
