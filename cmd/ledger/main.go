// Command ledger records and reports personal transactions from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ledger/internal/cli"
	"ledger/internal/ui"
)

const usage = `usage: ledger <command> [flags]

Reports:
  home          [-filter F] [-month "Jan 2024"]
  people        [-q prefix] [-unassigned]
  person        -name N [-filter F] [-q text]
  projects      [-q text]
  project       -name N
  locales

Changes:
  add-person    -name N
  add-txn       -title T -person N -amount A [-date YYYY-MM-DD]
  add-project   -name N [-members "A,B"]
  assign        -person N -project P
  unassign      -person N
  delete-person -name N
  delete-txn    -id ID
  delete-project -name N
  onboarding    [next|back|skip|reset]

Filters: all, week, month, year.
`

func main() {
	cli.LoadEnvFile()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger, err := cli.SetupLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	}()

	p := ui.New(stdout, app.Locale).WithClock(app.Service.Now)
	if err := execute(ctx, app, p, args); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		ui.New(stderr, app.Locale).Error(err.Error())
		return 1
	}
	return 0
}
