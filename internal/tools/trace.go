package tools

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ledger/internal/log"
)

type contextKey string

const callIDKey contextKey = "call_id"

// Metrics counts tool calls.
type Metrics struct {
	TotalCalls  int64
	FailedCalls int64
}

// Tracer logs every tool call with an id and its duration.
type Tracer struct {
	logger  *log.Logger
	metrics Metrics
}

func NewTracer(logger *log.Logger) *Tracer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Tracer{logger: logger.WithComponent(log.ComponentMCP)}
}

// Middleware wraps a tool handler. The handler's context carries the call
// id and a logger tagged with it.
func (t *Tracer) Middleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		callID := uuid.NewString()
		tool := request.Params.Name

		logger := t.logger.With("call_id", callID, log.FieldTool, tool)
		ctx = context.WithValue(ctx, callIDKey, callID)
		ctx = log.WithLogger(ctx, logger)

		atomic.AddInt64(&t.metrics.TotalCalls, 1)
		logger.DebugContext(ctx, "Tool call started")

		res, err := next(ctx, request)

		failed := err != nil || (res != nil && res.IsError)
		level := slog.LevelInfo
		if failed {
			atomic.AddInt64(&t.metrics.FailedCalls, 1)
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "Tool call completed",
			log.FieldComponent, log.ComponentMCP,
			"duration_ms", time.Since(start).Milliseconds(),
			"success", !failed)
		return res, err
	}
}

// Metrics returns a copy of the call counters.
func (t *Tracer) Metrics() Metrics {
	return Metrics{
		TotalCalls:  atomic.LoadInt64(&t.metrics.TotalCalls),
		FailedCalls: atomic.LoadInt64(&t.metrics.FailedCalls),
	}
}

// CallID returns the id of the tool call ctx belongs to.
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(callIDKey).(string); ok {
		return id
	}
	return ""
}
