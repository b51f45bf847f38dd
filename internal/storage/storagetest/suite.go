// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// Factory returns an empty store. It should register its own cleanup.
type Factory func(t *testing.T) storage.Store

var base = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func contact(id, name string) core.Contact {
	return core.Contact{ID: id, Name: name, CreatedAt: base}
}

func txn(id, contactID string, amount float64, offset int) core.Transaction {
	return core.Transaction{
		ID:          id,
		ContactID:   contactID,
		Title:       "txn " + id,
		Amount:      amount,
		Date:        base.AddDate(0, 0, offset),
		CurrentDate: base.Add(time.Duration(offset) * time.Minute),
	}
}

// Run exercises the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("duplicate contact name", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "bob")))

		err := s.CreateContact(ctx, contact("c2", "Bob"))
		var dup *core.DuplicateNameError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "c1", dup.Existing.ID)
		assert.ErrorIs(t, err, core.ErrDuplicateName)

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Contacts(), 1)
	})

	t.Run("blank contact name", func(t *testing.T) {
		s := newStore(t)
		err := s.CreateContact(context.Background(), contact("c1", "  "))
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("transaction with created contact", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		ann := contact("c1", "Ann")
		require.NoError(t, s.CreateTransaction(ctx, txn("t1", "c1", 25, 0), &ann))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		got := snap.TransactionsOf("c1")
		require.Len(t, got, 1)
		assert.Equal(t, 25.0, got[0].Amount)
		assert.True(t, got[0].Date.Equal(base))
		assert.True(t, got[0].CurrentDate.Equal(base))
	})

	t.Run("failed transaction leaves no contact behind", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))

		ann2 := contact("c2", "ANN")
		err := s.CreateTransaction(ctx, txn("t1", "c2", 10, 0), &ann2)
		assert.ErrorIs(t, err, core.ErrDuplicateName)

		ben := contact("c3", "Ben")
		err = s.CreateTransaction(ctx, txn("t2", "c3", 0, 0), &ben)
		assert.ErrorIs(t, err, core.ErrZeroAmount)

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Contacts(), 1)
		assert.Empty(t, snap.Transactions())
	})

	t.Run("transaction needs an owner", func(t *testing.T) {
		err := newStore(t).CreateTransaction(context.Background(), txn("t1", "ghost", 5, 0), nil)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("insertion order", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))
		require.NoError(t, s.CreateContact(ctx, contact("c2", "Ben")))
		for i, id := range []string{"t3", "t1", "t2"} {
			require.NoError(t, s.CreateTransaction(ctx, txn(id, "c1", float64(i+1), -i), nil))
		}

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		var ids []string
		for _, tr := range snap.TransactionsOf("c1") {
			ids = append(ids, tr.ID)
		}
		assert.Equal(t, []string{"t3", "t1", "t2"}, ids)
		assert.Equal(t, "Ann", snap.Contacts()[0].Name)
	})

	t.Run("delete transaction", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))
		require.NoError(t, s.CreateTransaction(ctx, txn("t1", "c1", 5, 0), nil))

		require.NoError(t, s.DeleteTransaction(ctx, "t1"))
		assert.ErrorIs(t, s.DeleteTransaction(ctx, "t1"), core.ErrNotFound)

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Transactions())
	})

	t.Run("delete project keeps members", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))
		require.NoError(t, s.CreateContact(ctx, contact("c2", "Ben")))
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p1", Name: "Trip", ContactIDs: []string{"c1", "c2"}, CreatedAt: base}))

		require.NoError(t, s.DeleteProject(ctx, "p1"))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Contacts(), 2)
		assert.Empty(t, snap.Projects())
		for _, id := range []string{"c1", "c2"} {
			_, ok := snap.ProjectOf(id)
			assert.False(t, ok, "contact %s still has a project", id)
		}
		assert.ErrorIs(t, s.DeleteProject(ctx, "p1"), core.ErrNotFound)
	})

	t.Run("delete contact cascades", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))
		require.NoError(t, s.CreateContact(ctx, contact("c2", "Ben")))
		require.NoError(t, s.CreateTransaction(ctx, txn("t1", "c1", 5, 0), nil))
		require.NoError(t, s.CreateTransaction(ctx, txn("t2", "c2", 7, 1), nil))
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p1", Name: "Trip", ContactIDs: []string{"c1", "c2"}, CreatedAt: base}))

		require.NoError(t, s.DeleteContact(ctx, "c1"))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Transactions(), 1)
		assert.Equal(t, "t2", snap.Transactions()[0].ID)
		p, ok := snap.Project("p1")
		require.True(t, ok)
		assert.Equal(t, []string{"c2"}, p.ContactIDs)
		assert.ErrorIs(t, s.DeleteContact(ctx, "c1"), core.ErrNotFound)
	})

	t.Run("assign moves between projects", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, c := range []core.Contact{contact("c1", "Ann"), contact("c2", "Ben"), contact("c3", "Cat")} {
			require.NoError(t, s.CreateContact(ctx, c))
		}
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p1", Name: "Trip", ContactIDs: []string{"c1"}, CreatedAt: base}))
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p2", Name: "Flat", CreatedAt: base}))

		require.NoError(t, s.AssignContact(ctx, "c3", "p2"))
		require.NoError(t, s.AssignContact(ctx, "c1", "p2"))
		require.NoError(t, s.AssignContact(ctx, "c1", "p2"))
		require.NoError(t, s.AssignContact(ctx, "c2", "p1"))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		p1, _ := snap.Project("p1")
		p2, _ := snap.Project("p2")
		assert.Equal(t, []string{"c2"}, p1.ContactIDs)
		assert.Equal(t, []string{"c3", "c1"}, p2.ContactIDs)

		require.NoError(t, s.AssignContact(ctx, "c3", ""))
		snap, err = s.Snapshot(ctx)
		require.NoError(t, err)
		_, ok := snap.ProjectOf("c3")
		assert.False(t, ok)

		assert.ErrorIs(t, s.AssignContact(ctx, "c3", "nope"), core.ErrNotFound)
		assert.ErrorIs(t, s.AssignContact(ctx, "nope", "p1"), core.ErrNotFound)
	})

	t.Run("create project takes members from other projects", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateContact(ctx, contact("c1", "Ann")))
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p1", Name: "Old", ContactIDs: []string{"c1"}, CreatedAt: base}))
		require.NoError(t, s.CreateProject(ctx, core.Project{ID: "p2", Name: "New", ContactIDs: []string{"c1"}, CreatedAt: base}))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		p, ok := snap.ProjectOf("c1")
		require.True(t, ok)
		assert.Equal(t, "p2", p.ID)
		old, _ := snap.Project("p1")
		assert.Empty(t, old.ContactIDs)
	})

	t.Run("create project with unknown member", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		err := s.CreateProject(ctx, core.Project{ID: "p1", Name: "Trip", ContactIDs: []string{"ghost"}, CreatedAt: base})
		assert.ErrorIs(t, err, core.ErrUnknownMember)
		assert.True(t, errors.Is(err, core.ErrValidation))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Projects())

		err = s.CreateProject(ctx, core.Project{ID: "p2", Name: "", CreatedAt: base})
		assert.ErrorIs(t, err, core.ErrEmptyName)
	})

	t.Run("settings", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, ok, err := s.Setting(ctx, "onboarding.page")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.PutSetting(ctx, "onboarding.page", "2"))
		require.NoError(t, s.PutSetting(ctx, "onboarding.page", "3"))
		v, ok, err := s.Setting(ctx, "onboarding.page")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", v)
	})
}
