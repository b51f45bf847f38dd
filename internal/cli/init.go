// Package cli provides the startup sequence shared by cmd/ledger and
// cmd/ledger-mcp.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/log"
	"ledger/internal/onboarding"
	"ledger/internal/period"
	"ledger/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration from the environment and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the logger described by cfg, writing to out, and makes
// it the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logFormat, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     level,
		Format:    logFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadLocale resolves cfg.Locale against the presets and the optional
// locales file.
func LoadLocale(cfg *config.Config) (format.Locale, error) {
	var extra []format.Locale
	if cfg.LocalesFile != "" {
		f, err := os.Open(cfg.LocalesFile)
		if err != nil {
			return format.Locale{}, fmt.Errorf("open locales file: %w", err)
		}
		defer f.Close()
		if extra, err = format.LoadLocales(f); err != nil {
			return format.Locale{}, fmt.Errorf("read locales file %s: %w", cfg.LocalesFile, err)
		}
	}
	registry, err := format.NewRegistry(extra...)
	if err != nil {
		return format.Locale{}, err
	}
	return registry.Lookup(cfg.Locale)
}

// App is everything a front end needs once startup has finished.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Locale  format.Locale
	Service *services.LedgerService
	Tracker *onboarding.Tracker
	// Snapshots is nil when the snapshot cache is disabled.
	Snapshots *cache.LRUCache[*core.Snapshot]
}

// Bootstrap opens the configured store and builds the ledger service.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	locale, err := LoadLocale(cfg)
	if err != nil {
		return nil, err
	}
	weekStart, err := period.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Locale:  locale,
		Tracker: onboarding.NewTracker(res.Store),
	}
	opts := []services.Option{
		services.WithCalendar(period.Calendar{WeekStart: weekStart}),
		services.WithLogger(logger),
	}
	if cfg.CacheEnabled() {
		app.Snapshots = cache.NewLRUCache[*core.Snapshot](cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL)
		opts = append(opts, services.WithSnapshotCache(app.Snapshots))
	}
	app.Service = services.NewLedgerService(res.Store, opts...)

	logger.DebugContext(ctx, "Ledger ready",
		log.FieldBackend, cfg.DataBackend,
		log.FieldLocale, locale.String(),
		"week_start", weekStart.String())
	return app, nil
}

// Close releases the store through the service.
func (a *App) Close() error {
	return a.Service.Close()
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached", log.FieldOperation, log.OpShutdown)
		}
		cancel()
		close(done)
	}()

	return ctx, done
}
