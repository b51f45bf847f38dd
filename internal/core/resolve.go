package core

import (
	"strings"
	"time"
)

// ResolutionKind tells whether a person name matched an existing contact.
type ResolutionKind int

const (
	Existing ResolutionKind = iota
	Created
)

func (k ResolutionKind) String() string {
	if k == Created {
		return "created"
	}
	return "existing"
}

// Resolution is the result of resolving a person name against a snapshot.
// When Kind is Created the contact has not been stored yet.
type Resolution struct {
	Kind    ResolutionKind
	Contact Contact
}

// ResolveContact finds the contact named name, ignoring case, or builds a new
// one with newID and now. It never touches the store.
func ResolveContact(s *Snapshot, name string, newID func() string, now time.Time) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, &ValidationError{Field: "person", Err: ErrEmptyPerson}
	}
	if c, ok := s.ContactByName(name); ok {
		return Resolution{Kind: Existing, Contact: c}, nil
	}
	return Resolution{
		Kind:    Created,
		Contact: Contact{ID: newID(), Name: name, CreatedAt: now},
	}, nil
}
