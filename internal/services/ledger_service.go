// Package services orchestrates the ledger: it validates input, resolves
// people, writes through the store and serves read views from snapshots.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/period"
	"ledger/internal/storage"
)

const snapshotKey = "snapshot"

// LedgerService is the single entry point front ends use to read and mutate
// the ledger.
type LedgerService struct {
	store     storage.Store
	calendar  period.Calendar
	now       func() time.Time
	newID     func() string
	snapshots cache.Cache[*core.Snapshot]
	logger    *log.Logger

	// mu orders cache fills against invalidation. generation counts
	// invalidations; a load may fill the cache only if none happened while
	// it read the store.
	mu         sync.Mutex
	generation uint64
	loads      singleflight.Group
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock sets the time source used for new records and views.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithIDGenerator replaces uuid ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

// WithCalendar sets the week start used by period filters.
func WithCalendar(cal period.Calendar) Option {
	return func(s *LedgerService) { s.calendar = cal }
}

// WithSnapshotCache keeps snapshots between reads. Every mutation purges it.
func WithSnapshotCache(c cache.Cache[*core.Snapshot]) Option {
	return func(s *LedgerService) { s.snapshots = c }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// NewLedgerService creates a service over store.
func NewLedgerService(store storage.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:    store,
		calendar: period.Gregorian,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar returns the calendar the service filters with.
func (s *LedgerService) Calendar() period.Calendar { return s.calendar }

// Now returns the service clock.
func (s *LedgerService) Now() time.Time { return s.now() }

// Snapshot returns the current record set, from the cache when possible.
// Concurrent misses of the same generation share one store read.
func (s *LedgerService) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	if s.snapshots == nil {
		return s.loadSnapshot(ctx)
	}
	if snap, ok := s.snapshots.Get(snapshotKey); ok {
		return snap, nil
	}

	gen := s.currentGeneration()
	v, err, _ := s.loads.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		snap, err := s.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.generation == gen {
			s.snapshots.Set(snapshotKey, snap)
		}
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Snapshot), nil
}

func (s *LedgerService) loadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

func (s *LedgerService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *LedgerService) invalidate() {
	if s.snapshots == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.snapshots.Purge()
}

// AddContact creates a contact. A name that folds to an existing one fails
// with *core.DuplicateNameError.
func (s *LedgerService) AddContact(ctx context.Context, name string) (core.Contact, error) {
	c := core.Contact{ID: s.newID(), Name: strings.TrimSpace(name), CreatedAt: s.now()}
	if err := c.Validate(); err != nil {
		return core.Contact{}, err
	}
	defer s.invalidate()
	if err := s.store.CreateContact(ctx, c); err != nil {
		return core.Contact{}, fmt.Errorf("add contact: %w", err)
	}
	s.logger.InfoContext(ctx, "Contact added",
		log.NewFields().WithOperation(log.OpCreate).WithContact(c.ID, c.Name).ToSlice()...)
	return c, nil
}

// RecordTransaction validates draft, resolves its person to an existing
// contact or a new one, and stores both atomically. The returned Resolution
// tells the caller whether a contact was created.
func (s *LedgerService) RecordTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, core.Resolution, error) {
	amount, err := draft.Validate()
	if err != nil {
		return core.Transaction{}, core.Resolution{}, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Transaction{}, core.Resolution{}, err
	}

	now := s.now()
	res, err := core.ResolveContact(snap, draft.Person, s.newID, now)
	if err != nil {
		return core.Transaction{}, core.Resolution{}, err
	}

	date := draft.Date
	if date.IsZero() {
		date = now
	}
	t := core.Transaction{
		ID:          s.newID(),
		Title:       strings.TrimSpace(draft.Title),
		Amount:      amount,
		Date:        date,
		CurrentDate: now,
	}

	defer s.invalidate()
	err = s.insertTransaction(ctx, &t, res)
	var dup *core.DuplicateNameError
	if errors.As(err, &dup) && res.Kind == core.Created {
		// The name was taken after the snapshot was read.
		res = core.Resolution{Kind: core.Existing, Contact: dup.Existing}
		err = s.insertTransaction(ctx, &t, res)
	}
	if err != nil {
		return core.Transaction{}, core.Resolution{}, fmt.Errorf("record transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		append(log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(t.ID, t.Title, t.Amount).
			WithContact(res.Contact.ID, res.Contact.Name).
			ToSlice(), log.FieldResolution, res.Kind.String())...)
	return t, res, nil
}

func (s *LedgerService) insertTransaction(ctx context.Context, t *core.Transaction, res core.Resolution) error {
	t.ContactID = res.Contact.ID
	var created *core.Contact
	if res.Kind == core.Created {
		c := res.Contact
		created = &c
	}
	return s.store.CreateTransaction(ctx, *t, created)
}

// CreateProject creates a project with the named members, in order. Every
// member must name an existing contact. Members leave their previous
// project.
func (s *LedgerService) CreateProject(ctx context.Context, name string, memberNames []string) (core.Project, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Project{}, err
	}
	p := core.Project{ID: s.newID(), Name: strings.TrimSpace(name), CreatedAt: s.now()}
	for _, m := range memberNames {
		if strings.TrimSpace(m) == "" {
			continue
		}
		c, ok := snap.ContactByName(m)
		if !ok {
			return core.Project{}, &core.ValidationError{Field: "people", Err: fmt.Errorf("%w: %q", core.ErrUnknownMember, m)}
		}
		p.ContactIDs = append(p.ContactIDs, c.ID)
	}
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}

	defer s.invalidate()
	if err := s.store.CreateProject(ctx, p); err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.logger.InfoContext(ctx, "Project created",
		append(log.NewFields().WithOperation(log.OpCreate).WithProject(p.ID, p.Name).ToSlice(),
			"members", len(p.ContactIDs))...)
	return p, nil
}

// Assign moves a contact into a project.
func (s *LedgerService) Assign(ctx context.Context, contactID, projectID string) error {
	if projectID == "" {
		return &core.ValidationError{Field: "project", Err: core.ErrEmptyName}
	}
	defer s.invalidate()
	if err := s.store.AssignContact(ctx, contactID, projectID); err != nil {
		return fmt.Errorf("assign contact: %w", err)
	}
	s.logger.InfoContext(ctx, "Contact assigned",
		log.NewFields().WithOperation(log.OpAssign).WithContact(contactID, "").WithProject(projectID, "").ToSlice()...)
	return nil
}

// Unassign removes a contact from its project, if any.
func (s *LedgerService) Unassign(ctx context.Context, contactID string) error {
	defer s.invalidate()
	if err := s.store.AssignContact(ctx, contactID, ""); err != nil {
		return fmt.Errorf("unassign contact: %w", err)
	}
	s.logger.InfoContext(ctx, "Contact unassigned",
		log.NewFields().WithOperation(log.OpAssign).WithContact(contactID, "").ToSlice()...)
	return nil
}

// DeleteContact removes a contact together with its transactions.
func (s *LedgerService) DeleteContact(ctx context.Context, id string) error {
	defer s.invalidate()
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	s.logger.InfoContext(ctx, "Contact deleted",
		log.NewFields().WithOperation(log.OpDelete).WithContact(id, "").ToSlice()...)
	return nil
}

// DeleteTransaction removes one transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	defer s.invalidate()
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldTxnID, id)
	return nil
}

// DeleteProject removes a project. Its members stay, unassigned.
func (s *LedgerService) DeleteProject(ctx context.Context, id string) error {
	defer s.invalidate()
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.logger.InfoContext(ctx, "Project deleted",
		log.NewFields().WithOperation(log.OpDelete).WithProject(id, "").ToSlice()...)
	return nil
}

// ContactByName finds a contact ignoring case.
func (s *LedgerService) ContactByName(ctx context.Context, name string) (core.Contact, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Contact{}, err
	}
	c, ok := snap.ContactByName(name)
	if !ok {
		return core.Contact{}, core.NotFound("contact", name)
	}
	return c, nil
}

// ProjectByName finds the first project with the given name, ignoring case.
func (s *LedgerService) ProjectByName(ctx context.Context, name string) (core.Project, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Project{}, err
	}
	p, ok := snap.ProjectByName(name)
	if !ok {
		return core.Project{}, core.NotFound("project", name)
	}
	return p, nil
}

// Close releases the store.
func (s *LedgerService) Close() error {
	s.invalidate()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
