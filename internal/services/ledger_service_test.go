package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/period"
	"ledger/internal/storage/memory"
)

var testNow = time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*LedgerService, *memory.Store) {
	t.Helper()
	store := memory.New()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}
	svc := NewLedgerService(store, append(base, opts...)...)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, store
}

func draft(title, person, amount string, date time.Time) core.TransactionDraft {
	return core.TransactionDraft{Title: title, Person: person, Amount: amount, Date: date}
}

func TestRecordTransactionResolvesContact(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	txn, res, err := svc.RecordTransaction(ctx, draft("Lunch", "Bob", "12.50", time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, core.Created, res.Kind)
	assert.Equal(t, "Bob", res.Contact.Name)
	assert.Equal(t, res.Contact.ID, txn.ContactID)
	assert.Equal(t, testNow, txn.Date, "zero date defaults to the clock")
	assert.Equal(t, testNow, txn.CurrentDate)

	txn2, res2, err := svc.RecordTransaction(ctx, draft("Dinner", "  bob ", "-5", testNow.AddDate(0, 0, -1)))
	require.NoError(t, err)
	assert.Equal(t, core.Existing, res2.Kind)
	assert.Equal(t, res.Contact.ID, txn2.ContactID)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Contacts(), 1)
	assert.Len(t, snap.TransactionsOf(res.Contact.ID), 2)
}

func TestRecordTransactionRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name  string
		draft core.TransactionDraft
		want  error
	}{
		{"blank title", draft(" ", "Bob", "1", testNow), core.ErrEmptyTitle},
		{"blank person", draft("Lunch", "", "1", testNow), core.ErrEmptyPerson},
		{"bad amount", draft("Lunch", "Bob", "12a", testNow), core.ErrInvalidAmount},
		{"zero amount", draft("Lunch", "Bob", "0.00", testNow), core.ErrZeroAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RecordTransaction(ctx, tt.draft)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsValidation(err))
		})
	}

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Contacts(), "invalid input must not create a contact")
	assert.Empty(t, snap.Transactions())
}

func TestAddContactDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	bob, err := svc.AddContact(ctx, "Bob")
	require.NoError(t, err)

	_, err = svc.AddContact(ctx, "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicateName)
	var dup *core.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, bob.ID, dup.Existing.ID)

	_, err = svc.AddContact(ctx, "   ")
	assert.ErrorIs(t, err, core.ErrEmptyName)
}

func TestCreateProjectAndAssign(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	alice, err := svc.AddContact(ctx, "Alice")
	require.NoError(t, err)
	bob, err := svc.AddContact(ctx, "Bob")
	require.NoError(t, err)

	trip, err := svc.CreateProject(ctx, "Trip", []string{"alice", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID, bob.ID}, trip.ContactIDs)

	_, err = svc.CreateProject(ctx, "Ghosts", []string{"Carol"})
	assert.ErrorIs(t, err, core.ErrUnknownMember)

	flat, err := svc.CreateProject(ctx, "Flat", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Assign(ctx, bob.ID, flat.ID))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	p, ok := snap.ProjectOf(bob.ID)
	require.True(t, ok)
	assert.Equal(t, flat.ID, p.ID)
	got, _ := snap.Project(trip.ID)
	assert.Equal(t, []string{alice.ID}, got.ContactIDs)

	require.NoError(t, svc.Unassign(ctx, bob.ID))
	unassigned, err := svc.UnassignedContacts(ctx, "")
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, bob.ID, unassigned[0].Contact.ID)
	assert.Empty(t, unassigned[0].Project)
	none, err := svc.UnassignedContacts(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.ErrorIs(t, svc.Assign(ctx, bob.ID, "missing"), core.ErrNotFound)
}

func TestDeletes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, bobRes, err := svc.RecordTransaction(ctx, draft("Lunch", "Bob", "10", testNow))
	require.NoError(t, err)
	aliceTxn, aliceRes, err := svc.RecordTransaction(ctx, draft("Taxi", "Alice", "20", testNow))
	require.NoError(t, err)
	p, err := svc.CreateProject(ctx, "Trip", []string{"Bob", "Alice"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContact(ctx, bobRes.Contact.ID))
	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Transactions(), 1, "contact delete cascades to its transactions")
	assert.Equal(t, []core.Contact{aliceRes.Contact}, snap.Members(p.ID))

	require.NoError(t, svc.DeleteProject(ctx, p.ID))
	snap, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Contacts(), 1, "project delete keeps members")
	_, ok := snap.ProjectOf(aliceRes.Contact.ID)
	assert.False(t, ok)

	require.NoError(t, svc.DeleteTransaction(ctx, aliceTxn.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, aliceTxn.ID), core.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteContact(ctx, "missing"), core.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProject(ctx, "missing"), core.ErrNotFound)
}

func TestSnapshotCacheInvalidatedOnMutation(t *testing.T) {
	ctx := context.Background()
	snaps := cache.NewLRUCache[*core.Snapshot](2, time.Hour)
	svc, store := newTestService(t, WithSnapshotCache(snaps))

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snaps.Size())

	again, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// A write that bypasses the service is not seen until the cache drops.
	require.NoError(t, store.CreateContact(ctx, core.Contact{ID: "x", Name: "Ghost", CreatedAt: testNow}))
	stale, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, stale.Contacts())

	_, err = svc.AddContact(ctx, "Bob")
	require.NoError(t, err)
	fresh, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh.Contacts(), 2)
}

// gatedStore holds its first Snapshot call after reading the state until
// release is closed.
type gatedStore struct {
	*memory.Store
	once     sync.Once
	captured chan struct{}
	release  chan struct{}
}

func (g *gatedStore) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	snap, err := g.Store.Snapshot(ctx)
	g.once.Do(func() {
		close(g.captured)
		<-g.release
	})
	return snap, err
}

func TestSnapshotReadRacingWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{Store: memory.New(), captured: make(chan struct{}), release: make(chan struct{})}
	svc := NewLedgerService(store,
		WithClock(func() time.Time { return testNow }),
		WithSnapshotCache(cache.NewLRUCache[*core.Snapshot](4, time.Hour)),
	)

	done := make(chan error, 1)
	go func() {
		_, err := svc.PeopleView(ctx, "")
		done <- err
	}()
	<-store.captured

	_, err := svc.AddContact(ctx, "Bob")
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	people, err := svc.PeopleView(ctx, "")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Bob", people[0].Contact.Name)
}

func TestRecordTransactionRetriesWhenNameTaken(t *testing.T) {
	ctx := context.Background()
	snaps := cache.NewLRUCache[*core.Snapshot](1, time.Hour)
	svc, store := newTestService(t, WithSnapshotCache(snaps))

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	bob := core.Contact{ID: "bob", Name: "Bob", CreatedAt: testNow}
	require.NoError(t, store.CreateContact(ctx, bob))

	txn, res, err := svc.RecordTransaction(ctx, draft("Lunch", "BOB", "3", testNow))
	require.NoError(t, err)
	assert.Equal(t, core.Existing, res.Kind)
	assert.Equal(t, "bob", txn.ContactID)
}

func TestContactAndProjectByName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.ContactByName(ctx, "nobody")
	assert.True(t, errors.Is(err, core.ErrNotFound))
	_, err = svc.ProjectByName(ctx, "nothing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	c, err := svc.AddContact(ctx, "Ana")
	require.NoError(t, err)
	got, err := svc.ContactByName(ctx, "ANA")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	p, err := svc.CreateProject(ctx, "Home", []string{"Ana"})
	require.NoError(t, err)
	gotP, err := svc.ProjectByName(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, p.ID, gotP.ID)
	assert.Equal(t, period.Gregorian, svc.Calendar())
}
