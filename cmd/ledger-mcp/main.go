// Command ledger-mcp serves the ledger as MCP tools over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/tools"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the protocol, so logs go to stderr.
	logger, err := cli.SetupLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := cli.Bootstrap(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to start ledger", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	caches := cache.NewManager(logger.Logger.With(log.FieldComponent, log.ComponentCache))
	if app.Snapshots != nil {
		caches.Register(app.Snapshots)
		caches.StartCleanup(cfg.SnapshotCacheTTL)
	}
	defer caches.Stop()

	tracer := tools.NewTracer(logger)
	s := server.NewMCPServer(
		"ledger",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(tracer.Middleware),
	)
	tools.RegisterTools(s, tools.NewHandlers(app.Service, app.Locale, logger))

	ctx, _ := cli.GracefulShutdown(logger, 5*time.Second, caches.Stop)

	logger.Info("Serving MCP tools on stdio", log.FieldOperation, log.OpStartup, log.FieldBackend, cfg.DataBackend)
	stdio := server.NewStdioServer(s)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
	}
	m := tracer.Metrics()
	logger.Info("MCP server stopped", log.FieldOperation, log.OpShutdown,
		"tool_calls", m.TotalCalls, "failed_tool_calls", m.FailedCalls)
}
