package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/storage"
	"ledger/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

const seedYAML = `
contacts:
  - Ann
projects:
  - name: Trip
    members: [ann, Ben]
transactions:
  - person: Ann
    title: Dinner
    amount: -40
    date: 2024-01-05
  - person: Cat
    title: Tickets
    amount: 120.5
    date: 2024-02-10T09:30:00Z
`

func TestLoadSeed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	require.NoError(t, s.Load(ctx, strings.NewReader(seedYAML), now))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Contacts(), 3)
	require.Len(t, snap.Transactions(), 2)

	ann, ok := snap.ContactByName("Ann")
	require.True(t, ok)
	got := snap.TransactionsOf(ann.ID)
	require.Len(t, got, 1)
	assert.Equal(t, -40.0, got[0].Amount)
	assert.Equal(t, time.January, got[0].Date.Month())

	trip, ok := snap.ProjectOf(ann.ID)
	require.True(t, ok)
	assert.Equal(t, "Trip", trip.Name)
	assert.Len(t, trip.ContactIDs, 2)
}

func TestLoadSeedRejectsBadDate(t *testing.T) {
	bad := "transactions:\n  - person: Ann\n    title: x\n    amount: 1\n    date: yesterday\n"
	err := New().Load(context.Background(), strings.NewReader(bad), time.Now())
	assert.Error(t, err)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	snap, _ := s.Snapshot(context.Background())
	assert.Empty(t, snap.Contacts())

	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))
	s, err = NewFromFile(path)
	require.NoError(t, err)
	snap, _ = s.Snapshot(context.Background())
	assert.Len(t, snap.Contacts(), 3)
}
