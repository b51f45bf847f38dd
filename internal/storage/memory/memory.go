// Package memory is an in-process record store. Every mutation works on a
// copy of the current state and swaps it in only on success.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type state struct {
	contacts     []core.Contact
	transactions []core.Transaction
	projects     []core.Project
}

func (s state) clone() state {
	out := state{
		contacts:     append([]core.Contact(nil), s.contacts...),
		transactions: append([]core.Transaction(nil), s.transactions...),
		projects:     make([]core.Project, len(s.projects)),
	}
	for i, p := range s.projects {
		out.projects[i] = p.Clone()
	}
	return out
}

func (s state) contactIndex(id string) int {
	for i, c := range s.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s state) projectIndex(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// leave removes the contact from every project.
func (s *state) leave(contactID string) {
	for i, p := range s.projects {
		kept := p.ContactIDs[:0]
		for _, id := range p.ContactIDs {
			if id != contactID {
				kept = append(kept, id)
			}
		}
		s.projects[i].ContactIDs = kept
	}
}

func (s *state) addContact(c core.Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	key := core.NameKey(c.Name)
	for _, existing := range s.contacts {
		if core.NameKey(existing.Name) == key {
			return &core.DuplicateNameError{Name: c.Name, Existing: existing}
		}
	}
	s.contacts = append(s.contacts, c)
	return nil
}

type Store struct {
	mu       sync.Mutex
	cur      state
	settings map[string]string
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{settings: map[string]string{}}
}

// update applies fn to a copy of the state and keeps the copy only if fn
// succeeds.
func (s *Store) update(fn func(next *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cur.clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.cur = next
	return nil
}

// CreateContact implements storage.ContactWriter
func (s *Store) CreateContact(_ context.Context, c core.Contact) error {
	return s.update(func(next *state) error {
		return next.addContact(c)
	})
}

// DeleteContact implements storage.ContactWriter
func (s *Store) DeleteContact(_ context.Context, id string) error {
	return s.update(func(next *state) error {
		i := next.contactIndex(id)
		if i < 0 {
			return core.NotFound("contact", id)
		}
		next.contacts = append(next.contacts[:i], next.contacts[i+1:]...)

		kept := next.transactions[:0]
		for _, t := range next.transactions {
			if t.ContactID != id {
				kept = append(kept, t)
			}
		}
		next.transactions = kept
		next.leave(id)
		return nil
	})
}

// CreateTransaction implements storage.TransactionWriter
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction, created *core.Contact) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.update(func(next *state) error {
		if created != nil {
			if err := next.addContact(*created); err != nil {
				return err
			}
		}
		if next.contactIndex(t.ContactID) < 0 {
			return core.NotFound("contact", t.ContactID)
		}
		next.transactions = append(next.transactions, t)
		return nil
	})
}

// DeleteTransaction implements storage.TransactionWriter
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	return s.update(func(next *state) error {
		for i, t := range next.transactions {
			if t.ID == id {
				next.transactions = append(next.transactions[:i], next.transactions[i+1:]...)
				return nil
			}
		}
		return core.NotFound("transaction", id)
	})
}

// CreateProject implements storage.ProjectWriter
func (s *Store) CreateProject(_ context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.Clone()
	return s.update(func(next *state) error {
		for _, id := range p.ContactIDs {
			if next.contactIndex(id) < 0 {
				return &core.ValidationError{Field: "people", Err: fmt.Errorf("%w: %s", core.ErrUnknownMember, id)}
			}
			next.leave(id)
		}
		next.projects = append(next.projects, p)
		return nil
	})
}

// AssignContact implements storage.ProjectWriter
func (s *Store) AssignContact(_ context.Context, contactID, projectID string) error {
	return s.update(func(next *state) error {
		if next.contactIndex(contactID) < 0 {
			return core.NotFound("contact", contactID)
		}
		target := -1
		if projectID != "" {
			if target = next.projectIndex(projectID); target < 0 {
				return core.NotFound("project", projectID)
			}
			if next.projects[target].Has(contactID) {
				return nil
			}
		}
		next.leave(contactID)
		if target >= 0 {
			next.projects[target].ContactIDs = append(next.projects[target].ContactIDs, contactID)
		}
		return nil
	})
}

// DeleteProject implements storage.ProjectWriter
func (s *Store) DeleteProject(_ context.Context, id string) error {
	return s.update(func(next *state) error {
		i := next.projectIndex(id)
		if i < 0 {
			return core.NotFound("project", id)
		}
		next.projects = append(next.projects[:i], next.projects[i+1:]...)
		return nil
	})
}

// Snapshot implements storage.SnapshotReader
func (s *Store) Snapshot(_ context.Context) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.NewSnapshot(s.cur.contacts, s.cur.transactions, s.cur.projects), nil
}

// Setting implements storage.SettingsStore
func (s *Store) Setting(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

// PutSetting implements storage.SettingsStore
func (s *Store) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *Store) Close() error { return nil }
