package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type (
	// Contact is a person or counterparty. Its transactions and project are
	// derived from a Snapshot, never stored on the contact itself.
	Contact struct {
		ID        string
		Name      string
		CreatedAt time.Time
	}

	// Transaction is a single signed monetary record owned by one contact.
	// Positive amounts are owed to the ledger owner, negative ones are payments.
	Transaction struct {
		ID          string
		ContactID   string
		Title       string
		Amount      float64
		Date        time.Time // logical date chosen by the user
		CurrentDate time.Time // wall clock at insert time
	}

	// Project groups contacts. ContactIDs keeps member order.
	Project struct {
		ID         string
		Name       string
		ContactIDs []string
		CreatedAt  time.Time
	}

	// TransactionDraft is the raw input of the "new transaction" form.
	TransactionDraft struct {
		Title  string
		Person string
		Amount string
		Date   time.Time
	}
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateName = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")

	ErrEmptyName     = errors.New("empty name")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyPerson   = errors.New("empty person")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrZeroAmount    = errors.New("amount must not be zero")
	ErrUnknownMember = errors.New("unknown project member")
)

// NameKey returns the key used for case-insensitive name comparison.
func NameKey(name string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(name)))
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if t.ContactID == "" {
		return &ValidationError{Field: "person", Err: ErrEmptyPerson}
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if t.Amount == 0 {
		return &ValidationError{Field: "amount", Err: ErrZeroAmount}
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	seen := make(map[string]struct{}, len(p.ContactIDs))
	for _, id := range p.ContactIDs {
		if _, dup := seen[id]; dup || id == "" {
			return &ValidationError{Field: "people", Err: ErrUnknownMember}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Validate checks the draft and returns the parsed amount.
func (d TransactionDraft) Validate() (float64, error) {
	if strings.TrimSpace(d.Title) == "" {
		return 0, &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if strings.TrimSpace(d.Person) == "" {
		return 0, &ValidationError{Field: "person", Err: ErrEmptyPerson}
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Err: err}
	}
	return amount, nil
}

// Clone returns a copy of the project that does not share its member slice.
func (p Project) Clone() Project {
	p.ContactIDs = append([]string(nil), p.ContactIDs...)
	return p
}

// Has reports whether the contact is a member of the project.
func (p Project) Has(contactID string) bool {
	for _, id := range p.ContactIDs {
		if id == contactID {
			return true
		}
	}
	return false
}
