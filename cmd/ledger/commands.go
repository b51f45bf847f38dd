package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ledger/internal/cli"
	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/onboarding"
	"ledger/internal/period"
	"ledger/internal/tools"
	"ledger/internal/ui"
)

var errUsage = errors.New("usage")

type command func(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error

var commands = map[string]command{
	"home":           homeCmd,
	"people":         peopleCmd,
	"person":         personCmd,
	"projects":       projectsCmd,
	"project":        projectCmd,
	"locales":        localesCmd,
	"add-person":     addPersonCmd,
	"add-txn":        addTxnCmd,
	"add-project":    addProjectCmd,
	"assign":         assignCmd,
	"unassign":       unassignCmd,
	"delete-person":  deletePersonCmd,
	"delete-txn":     deleteTxnCmd,
	"delete-project": deleteProjectCmd,
	"onboarding":     onboardingCmd,
}

func execute(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return cmd(ctx, app, p, args[1:])
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	return nil
}

func homeCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("home")
	filterFlag := fs.String("filter", "all", "period filter")
	month := fs.String("month", "", "only this month, e.g. \"Jan 2024\"")
	if err := parse(fs, args); err != nil {
		return err
	}
	filter, err := period.ParseFilter(*filterFlag)
	if err != nil {
		return err
	}
	view, err := app.Service.HomeView(ctx, filter)
	if err != nil {
		return err
	}
	return p.Home(view, *month)
}

func peopleCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("people")
	q := fs.String("q", "", "name prefix")
	unassigned := fs.Bool("unassigned", false, "only people in no project")
	if err := parse(fs, args); err != nil {
		return err
	}
	view := app.Service.PeopleView
	if *unassigned {
		view = app.Service.UnassignedContacts
	}
	lines, err := view(ctx, *q)
	if err != nil {
		return err
	}
	return p.People(lines)
}

func personCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("person")
	name := fs.String("name", "", "person name")
	filterFlag := fs.String("filter", "all", "period filter")
	q := fs.String("q", "", "title or date text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("name", *name); err != nil {
		return err
	}
	filter, err := period.ParseFilter(*filterFlag)
	if err != nil {
		return err
	}
	c, err := app.Service.ContactByName(ctx, *name)
	if err != nil {
		return err
	}
	view, err := app.Service.PersonView(ctx, c.ID, filter, *q)
	if err != nil {
		return err
	}
	return p.Person(view)
}

func projectsCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("projects")
	q := fs.String("q", "", "name text")
	if err := parse(fs, args); err != nil {
		return err
	}
	lines, err := app.Service.ProjectsView(ctx, *q)
	if err != nil {
		return err
	}
	return p.Projects(lines)
}

func projectCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("project")
	name := fs.String("name", "", "project name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("name", *name); err != nil {
		return err
	}
	project, err := app.Service.ProjectByName(ctx, *name)
	if err != nil {
		return err
	}
	view, err := app.Service.ProjectView(ctx, project.ID)
	if err != nil {
		return err
	}
	return p.Project(view)
}

func localesCmd(_ context.Context, app *cli.App, p *ui.Printer, args []string) error {
	if err := parse(newFlagSet("locales"), args); err != nil {
		return err
	}
	reg, err := format.NewRegistry()
	if err != nil {
		return err
	}
	p.Info("Current locale: " + app.Locale.String())
	p.Info("Weeks start on " + app.Service.Calendar().WeekStart.String())
	return p.Locales(reg.Locales())
}

func addPersonCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("add-person")
	name := fs.String("name", "", "person name")
	if err := parse(fs, args); err != nil {
		return err
	}
	c, err := app.Service.AddContact(ctx, *name)
	if err != nil {
		return err
	}
	p.Success("Added " + c.Name)
	return nil
}

func addTxnCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("add-txn")
	title := fs.String("title", "", "what it was for")
	person := fs.String("person", "", "person name, created if unknown")
	amount := fs.String("amount", "", "signed amount")
	date := fs.String("date", "", "YYYY-MM-DD, defaults to today")
	if err := parse(fs, args); err != nil {
		return err
	}

	draft := core.TransactionDraft{Title: *title, Person: *person, Amount: *amount}
	if *date != "" {
		d, err := time.ParseInLocation("2006-01-02", *date, app.Service.Now().Location())
		if err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", *date)
		}
		draft.Date = d
	}

	txn, res, err := app.Service.RecordTransaction(ctx, draft)
	if err != nil {
		return err
	}
	if res.Kind == core.Created {
		p.Warning("created new contact " + res.Contact.Name)
	}
	p.Success(fmt.Sprintf("Recorded %s for %s: %s (id %s)",
		txn.Title, res.Contact.Name, p.Amount(txn.Amount), txn.ID))
	return nil
}

func addProjectCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("add-project")
	name := fs.String("name", "", "project name")
	members := fs.String("members", "", "comma-separated person names")
	if err := parse(fs, args); err != nil {
		return err
	}
	project, err := app.Service.CreateProject(ctx, *name, tools.SplitNames(*members))
	if err != nil {
		return err
	}
	p.Success(fmt.Sprintf("Created project %s with %d members", project.Name, len(project.ContactIDs)))
	return nil
}

func assignCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("assign")
	person := fs.String("person", "", "person name")
	projectName := fs.String("project", "", "project name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("project", *projectName); err != nil {
		return err
	}
	c, err := app.Service.ContactByName(ctx, *person)
	if err != nil {
		return err
	}
	project, err := app.Service.ProjectByName(ctx, *projectName)
	if err != nil {
		return err
	}
	if err := app.Service.Assign(ctx, c.ID, project.ID); err != nil {
		return err
	}
	p.Success(fmt.Sprintf("%s joined %s", c.Name, project.Name))
	return nil
}

func unassignCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("unassign")
	person := fs.String("person", "", "person name")
	if err := parse(fs, args); err != nil {
		return err
	}
	c, err := app.Service.ContactByName(ctx, *person)
	if err != nil {
		return err
	}
	if err := app.Service.Unassign(ctx, c.ID); err != nil {
		return err
	}
	p.Success(c.Name + " left their project")
	return nil
}

func deletePersonCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("delete-person")
	name := fs.String("name", "", "person name")
	if err := parse(fs, args); err != nil {
		return err
	}
	c, err := app.Service.ContactByName(ctx, *name)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteContact(ctx, c.ID); err != nil {
		return err
	}
	p.Success("Deleted " + c.Name + " and their transactions")
	return nil
}

func deleteTxnCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("delete-txn")
	id := fs.String("id", "", "transaction id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	if err := app.Service.DeleteTransaction(ctx, *id); err != nil {
		return err
	}
	p.Success("Deleted transaction " + *id)
	return nil
}

func deleteProjectCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	fs := newFlagSet("delete-project")
	name := fs.String("name", "", "project name")
	if err := parse(fs, args); err != nil {
		return err
	}
	project, err := app.Service.ProjectByName(ctx, *name)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteProject(ctx, project.ID); err != nil {
		return err
	}
	p.Success("Deleted project " + project.Name)
	return nil
}

func onboardingCmd(ctx context.Context, app *cli.App, p *ui.Printer, args []string) error {
	steps := map[string]func(onboarding.State) onboarding.State{
		"":      func(s onboarding.State) onboarding.State { return s },
		"next":  onboarding.State.Next,
		"back":  onboarding.State.Back,
		"skip":  onboarding.State.Skip,
		"reset": onboarding.State.Reset,
	}
	action := ""
	if len(args) > 0 {
		action = args[0]
	}
	step, ok := steps[action]
	if !ok {
		return fmt.Errorf("%w: unknown onboarding action %q", errUsage, action)
	}
	state, err := app.Tracker.Apply(ctx, step)
	if err != nil {
		return err
	}
	p.Onboarding(state)
	return nil
}
