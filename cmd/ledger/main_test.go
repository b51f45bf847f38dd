package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/ui"
)

func newApp(t *testing.T) *cli.App {
	t.Helper()
	app, err := cli.Bootstrap(context.Background(), &config.Config{
		DataBackend:       "memory",
		Locale:            "en-US",
		WeekStart:         "sunday",
		LogLevel:          "error",
		LogFormat:         "text",
		SnapshotCacheTTL:  time.Minute,
		SnapshotCacheSize: 4,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func exec(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := execute(context.Background(), app, ui.NewPlain(&buf, app.Locale), args)
	return buf.String(), err
}

func TestExecuteFlow(t *testing.T) {
	app := newApp(t)

	out, err := exec(t, app, "add-txn", "-title", "Lunch", "-person", "Bob", "-amount", "-50.50", "-date", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "created new contact Bob")
	assert.Contains(t, out, "-$ 50.50")

	out, err = exec(t, app, "add-txn", "-title", "Taxi", "-person", "bob", "-amount", "20", "-date", "2024-02-10")
	require.NoError(t, err)
	assert.NotContains(t, out, "created new contact")

	_, err = exec(t, app, "add-person", "-name", "Alice")
	require.NoError(t, err)
	_, err = exec(t, app, "add-person", "-name", "ALICE")
	assert.Error(t, err)

	out, err = exec(t, app, "add-project", "-name", "Trip", "-members", "Alice,Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "with 2 members")

	out, err = exec(t, app, "home")
	require.NoError(t, err)
	assert.Contains(t, out, "Jan 2024")
	assert.Contains(t, out, "Lunch")

	out, err = exec(t, app, "person", "-name", "bob", "-q", "January")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch")
	assert.NotContains(t, out, "Taxi")
	assert.Contains(t, out, "Project: Trip")

	out, err = exec(t, app, "people", "-q", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "Bob")

	out, err = exec(t, app, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip")

	_, err = exec(t, app, "unassign", "-person", "Alice")
	require.NoError(t, err)
	out, err = exec(t, app, "people", "-unassigned")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "Bob")
	out, err = exec(t, app, "project", "-name", "trip")
	require.NoError(t, err)
	assert.NotContains(t, out, "Alice")

	_, err = exec(t, app, "assign", "-person", "Alice", "-project", "Trip")
	require.NoError(t, err)

	_, err = exec(t, app, "delete-project", "-name", "Trip")
	require.NoError(t, err)
	_, err = exec(t, app, "delete-person", "-name", "Bob")
	require.NoError(t, err)
	out, err = exec(t, app, "home")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions")
}

func TestExecuteUsageErrors(t *testing.T) {
	app := newApp(t)

	_, err := exec(t, app)
	assert.ErrorIs(t, err, errUsage)
	_, err = exec(t, app, "frobnicate")
	assert.ErrorIs(t, err, errUsage)
	_, err = exec(t, app, "person")
	assert.ErrorIs(t, err, errUsage)
	_, err = exec(t, app, "home", "-bogus")
	assert.ErrorIs(t, err, errUsage)
	_, err = exec(t, app, "onboarding", "sideways")
	assert.ErrorIs(t, err, errUsage)
	_, err = exec(t, app, "delete-txn", "-id", "missing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)
}

func TestLocalesCommand(t *testing.T) {
	app := newApp(t)
	out, err := exec(t, app, "locales")
	require.NoError(t, err)
	assert.Contains(t, out, "Current locale: en-US")
	assert.Contains(t, out, "Weeks start on Sunday")
	assert.Contains(t, out, "₹ 2.50 Lacs")
}

func TestOnboardingCommand(t *testing.T) {
	app := newApp(t)

	out, err := exec(t, app, "onboarding")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/4] Get Started")

	out, err = exec(t, app, "onboarding", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "[2/4] Record Payments")

	out, err = exec(t, app, "onboarding", "skip")
	require.NoError(t, err)
	assert.Contains(t, out, "Onboarding complete")

	out, err = exec(t, app, "onboarding", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/4]")
}

func TestRunPersistsWithSQLite(t *testing.T) {
	color.NoColor = true
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("LEDGER_LOCALE", "en-IN")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")

	ctx := context.Background()
	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"add-txn", "-title", "Rent", "-person", "Ravi", "-amount", "250000"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	stdout.Reset()
	code = run(ctx, []string{"people"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Ravi")
	assert.Contains(t, stdout.String(), "₹ 2.50 Lacs")

	stderr.Reset()
	code = run(ctx, []string{"person", "-name", "Nobody"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "Error: "), stderr.String())

	assert.Equal(t, 2, run(ctx, nil, &stdout, &stderr))
}
