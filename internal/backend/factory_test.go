package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", SeedFile: "seed.yaml"})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, "seed.yaml", cfg.SeedFile)
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: "postgres"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
contacts: [Alice]
transactions:
  - person: Bob
    title: Lunch
    amount: 12.5
    date: "2024-01-02"
`), 0o644))

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	snap, err := res.Store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Contacts(), 2)
	assert.Len(t, snap.Transactions(), 1)
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)

	snap, err := res.Store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Contacts())
	assert.NoError(t, res.Close())
}

func TestCreateBackendRejectsUnknownType(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
}
