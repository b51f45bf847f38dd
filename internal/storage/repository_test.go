package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
	"ledger/internal/storage/storagetest"
)

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return newRepo(t) })
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.CreateContact(ctx, core.Contact{ID: "c1", Name: "Ann"}))
	require.NoError(t, repo.Close())

	// migrations are idempotent and data survives
	repo, err = storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	c, ok := snap.ContactByName("ANN")
	require.True(t, ok)
	assert.Equal(t, "c1", c.ID)
}

func TestSQLiteRepositoryDuplicateWithCorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.CreateContact(ctx, core.Contact{ID: "c1", Name: "Ann"}))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE contacts SET created_at = 'yesterday' WHERE id = 'c1'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = repo.CreateContact(ctx, core.Contact{ID: "c2", Name: "ann"})
	require.Error(t, err)
	var dup *core.DuplicateNameError
	assert.False(t, errors.As(err, &dup))
	assert.Contains(t, err.Error(), "created_at")
}
