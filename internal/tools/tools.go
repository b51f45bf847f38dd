// Package tools exposes the ledger as MCP tools.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ledger/internal/core"
	"ledger/internal/format"
	"ledger/internal/log"
	"ledger/internal/period"
	"ledger/internal/services"
	"ledger/internal/ui"
)

const dateLayout = "2006-01-02"

// Handlers serves the ledger tools.
type Handlers struct {
	svc    *services.LedgerService
	locale format.Locale
	logger *log.Logger
}

func NewHandlers(svc *services.LedgerService, loc format.Locale, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Discard()
	}
	return &Handlers{svc: svc, locale: loc, logger: logger.WithComponent(log.ComponentMCP)}
}

// RegisterTools adds all ledger MCP tools to the server.
func RegisterTools(s *server.MCPServer, h *Handlers) {
	registerHomeSummary(s, h)
	registerListPeople(s, h)
	registerPersonLedger(s, h)
	registerListProjects(s, h)
	registerProjectSummary(s, h)
	registerRecordTransaction(s, h)
	registerAddPerson(s, h)
	registerCreateProject(s, h)
}

const filterHelp = "Period filter: All, This Week, This Month or This Year (also week, month, year). Defaults to All."

func registerHomeSummary(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("home_summary",
		mcp.WithDescription("Totals of every transaction in the period grouped by month, newest month first."),
		mcp.WithString("filter",
			mcp.Description(filterHelp),
		),
		mcp.WithString("month",
			mcp.Description("Only show this month, formatted like 'Jan 2024'"),
		),
	)
	s.AddTool(tool, h.HomeSummary)
}

func registerListPeople(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("list_people",
		mcp.WithDescription("List people with their balance, project and last activity, most recently active first."),
		mcp.WithString("query",
			mcp.Description("Only people whose name starts with this text (case-insensitive)"),
		),
		mcp.WithBoolean("unassigned",
			mcp.Description("Only people who are in no project, i.e. the ones a new project can take"),
		),
	)
	s.AddTool(tool, h.ListPeople)
}

func registerPersonLedger(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("person_ledger",
		mcp.WithDescription("Show one person's transactions, newest first, with their balance."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Person name (case-insensitive)"),
		),
		mcp.WithString("filter",
			mcp.Description(filterHelp),
		),
		mcp.WithString("query",
			mcp.Description("Only transactions whose title or long date ('January 2, 2006') contains this text"),
		),
	)
	s.AddTool(tool, h.PersonLedger)
}

func registerListProjects(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("list_projects",
		mcp.WithDescription("List projects with member count and the total of their members' balances."),
		mcp.WithString("query",
			mcp.Description("Only projects whose name contains this text"),
		),
	)
	s.AddTool(tool, h.ListProjects)
}

func registerProjectSummary(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("project_summary",
		mcp.WithDescription("Show a project's members and their balances."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name (case-insensitive)"),
		),
	)
	s.AddTool(tool, h.ProjectSummary)
}

func registerRecordTransaction(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("record_transaction",
		mcp.WithDescription("Record a transaction with a person. Unknown people are created. Positive amounts are owed to you, negative amounts are payments received."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("What the transaction was for"),
		),
		mcp.WithString("person",
			mcp.Required(),
			mcp.Description("Person name; created if unknown"),
		),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Signed amount, e.g. 12.50 or -7"),
		),
		mcp.WithString("date",
			mcp.Description("Date (YYYY-MM-DD). Defaults to today."),
		),
	)
	s.AddTool(tool, h.RecordTransaction)
}

func registerAddPerson(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("add_person",
		mcp.WithDescription("Add a person. Names are unique, ignoring case."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Person name"),
		),
	)
	s.AddTool(tool, h.AddPerson)
}

func registerCreateProject(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("create_project",
		mcp.WithDescription("Create a project. Members move out of any project they were in."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("members",
			mcp.Description("Comma-separated names of existing people"),
		),
	)
	s.AddTool(tool, h.CreateProject)
}

func (h *Handlers) render(fn func(p *ui.Printer) error) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := fn(ui.NewPlain(&buf, h.locale).WithClock(h.svc.Now)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *Handlers) fail(ctx context.Context, tool string, err error) (*mcp.CallToolResult, error) {
	errType := log.ErrorTypeInternal
	switch {
	case core.IsValidation(err):
		errType = log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		errType = log.ErrorTypeNotFound
	case errors.Is(err, core.ErrDuplicateName):
		errType = log.ErrorTypeConflict
	}
	// Traced calls carry a logger already tagged with the call id and tool.
	logger := h.logger.With(log.FieldTool, tool)
	if CallID(ctx) != "" {
		logger = log.FromContext(ctx)
	}
	logger.WarnContext(ctx, "Tool call failed", log.NewFields().WithError(err, errType).ToSlice()...)
	return mcp.NewToolResultError(err.Error()), nil
}

func (h *Handlers) HomeSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := period.ParseFilter(mcp.ParseString(request, "filter", ""))
	if err != nil {
		return h.fail(ctx, "home_summary", err)
	}
	view, err := h.svc.HomeView(ctx, filter)
	if err != nil {
		return h.fail(ctx, "home_summary", err)
	}
	month := mcp.ParseString(request, "month", "")
	return h.render(func(p *ui.Printer) error { return p.Home(view, month) })
}

func (h *Handlers) ListPeople(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := h.svc.PeopleView
	if mcp.ParseBoolean(request, "unassigned", false) {
		view = h.svc.UnassignedContacts
	}
	lines, err := view(ctx, mcp.ParseString(request, "query", ""))
	if err != nil {
		return h.fail(ctx, "list_people", err)
	}
	return h.render(func(p *ui.Printer) error { return p.People(lines) })
}

func (h *Handlers) PersonLedger(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	filter, err := period.ParseFilter(mcp.ParseString(request, "filter", ""))
	if err != nil {
		return h.fail(ctx, "person_ledger", err)
	}
	c, err := h.svc.ContactByName(ctx, name)
	if err != nil {
		return h.fail(ctx, "person_ledger", err)
	}
	view, err := h.svc.PersonView(ctx, c.ID, filter, mcp.ParseString(request, "query", ""))
	if err != nil {
		return h.fail(ctx, "person_ledger", err)
	}
	return h.render(func(p *ui.Printer) error { return p.Person(view) })
}

func (h *Handlers) ListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines, err := h.svc.ProjectsView(ctx, mcp.ParseString(request, "query", ""))
	if err != nil {
		return h.fail(ctx, "list_projects", err)
	}
	return h.render(func(p *ui.Printer) error { return p.Projects(lines) })
}

func (h *Handlers) ProjectSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	project, err := h.svc.ProjectByName(ctx, name)
	if err != nil {
		return h.fail(ctx, "project_summary", err)
	}
	view, err := h.svc.ProjectView(ctx, project.ID)
	if err != nil {
		return h.fail(ctx, "project_summary", err)
	}
	return h.render(func(p *ui.Printer) error { return p.Project(view) })
}

func (h *Handlers) RecordTransaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := core.TransactionDraft{
		Title:  mcp.ParseString(request, "title", ""),
		Person: mcp.ParseString(request, "person", ""),
		Amount: mcp.ParseString(request, "amount", ""),
	}
	if d := mcp.ParseString(request, "date", ""); d != "" {
		date, err := time.ParseInLocation(dateLayout, d, h.svc.Now().Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q: use YYYY-MM-DD", d)), nil
		}
		draft.Date = date
	}

	txn, res, err := h.svc.RecordTransaction(ctx, draft)
	if err != nil {
		return h.fail(ctx, "record_transaction", err)
	}
	msg := fmt.Sprintf("Recorded %q for %s: %s on %s (id %s)",
		txn.Title, res.Contact.Name, format.Money(txn.Amount, h.locale), format.LongDate(txn.Date), txn.ID)
	if res.Kind == core.Created {
		msg += "\nCreated new contact " + res.Contact.Name
	}
	return mcp.NewToolResultText(msg), nil
}

func (h *Handlers) AddPerson(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	c, err := h.svc.AddContact(ctx, name)
	if err != nil {
		return h.fail(ctx, "add_person", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %s (id %s)", c.Name, c.ID)), nil
}

func (h *Handlers) CreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	p, err := h.svc.CreateProject(ctx, name, SplitNames(mcp.ParseString(request, "members", "")))
	if err != nil {
		return h.fail(ctx, "create_project", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created project %s with %d members (id %s)", p.Name, len(p.ContactIDs), p.ID)), nil
}

// SplitNames splits a comma-separated list, dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
