package tools

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/log"
)

func TestTracerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	tracer := NewTracer(logger)

	var seen string
	handler := tracer.Middleware(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		seen = CallID(ctx)
		if mcp.ParseString(request, "fail", "") != "" {
			return mcp.NewToolResultError("nope"), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	req := call(map[string]any{})
	req.Params.Name = "list_people"
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.NotEmpty(t, seen)
	assert.Contains(t, buf.String(), "call_id="+seen)
	assert.Contains(t, buf.String(), "tool=list_people")

	_, err = handler(context.Background(), call(map[string]any{"fail": "yes"}))
	require.NoError(t, err)
	assert.Equal(t, Metrics{TotalCalls: 2, FailedCalls: 1}, tracer.Metrics())
	assert.Contains(t, buf.String(), "success=false")
	assert.Empty(t, CallID(context.Background()))
}

func TestFailureLogCarriesCallID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)})
	h := newHandlers(t)
	tracer := NewTracer(logger)

	var callID string
	handler := tracer.Middleware(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID = CallID(ctx)
		return h.PersonLedger(ctx, request)
	})
	req := call(map[string]any{"name": "Nobody"})
	req.Params.Name = "person_ledger"
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	var failed string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Tool call failed") {
			failed = line
		}
	}
	require.NotEmpty(t, failed, buf.String())
	assert.Contains(t, failed, "call_id="+callID)
	assert.Contains(t, failed, "error_type=not_found_error")
}
