package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/period"
)

func memoryConfig() *config.Config {
	return &config.Config{
		DataBackend:       "memory",
		Locale:            "en-IN",
		WeekStart:         "monday",
		LogLevel:          "debug",
		LogFormat:         "json",
		SnapshotCacheTTL:  time.Minute,
		SnapshotCacheSize: 2,
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(memoryConfig(), &buf)
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"component":"app"`)

	cfg := memoryConfig()
	cfg.LogFormat = "xml"
	_, err = SetupLogger(cfg, &buf)
	assert.Error(t, err)
}

func TestLoadLocaleWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locales.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
locales:
  - tag: en-US
    currency: USD
    symbol: "US$"
`), 0o644))

	cfg := memoryConfig()
	cfg.Locale = "en-US"
	cfg.LocalesFile = path
	loc, err := LoadLocale(cfg)
	require.NoError(t, err)
	assert.Equal(t, "US$", loc.Symbol)

	cfg.LocalesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadLocale(cfg)
	assert.Error(t, err)
}

func TestBootstrapMemory(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cfg := memoryConfig()
	logger, err := SetupLogger(cfg, &buf)
	require.NoError(t, err)

	app, err := Bootstrap(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.True(t, app.Locale.LakhCrore)
	assert.Equal(t, period.Calendar{WeekStart: time.Monday}, app.Service.Calendar())
	require.NotNil(t, app.Snapshots)

	_, res, err := app.Service.RecordTransaction(ctx, core.TransactionDraft{Title: "Tea", Person: "Ravi", Amount: "20"})
	require.NoError(t, err)
	assert.Equal(t, core.Created, res.Kind)

	state, err := app.Tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Page)
}

func TestBootstrapWithoutCache(t *testing.T) {
	cfg := memoryConfig()
	cfg.SnapshotCacheTTL = 0
	app, err := Bootstrap(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.Snapshots)
}

func TestGracefulShutdown(t *testing.T) {
	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(log.Discard(), time.Second, func() { close(cleaned) })

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	<-cleaned
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
