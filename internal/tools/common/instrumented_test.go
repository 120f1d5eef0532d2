package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickcal/internal/calendar"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/scheduler"
	"github.com/teemow/quickcal/internal/server"
)

type nopDispatcher struct{}

func (nopDispatcher) DispatchAll(context.Context, []string, event.Draft) []event.Outcome {
	return nil
}

func (nopDispatcher) PrimaryCalendar(context.Context, string) (*calendar.CalendarInfo, error) {
	return nil, errors.New("not implemented")
}

func newServerContext(t *testing.T, audit *instrumentation.AuditLogger) *server.ServerContext {
	t.Helper()

	svc, err := scheduler.New(scheduler.Config{Dispatcher: nopDispatcher{}})
	require.NoError(t, err)

	sc, err := server.NewServerContext(context.Background(), server.ServerContextConfig{
		Scheduler: svc,
		Audit:     audit,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newAuditBuffer() (*instrumentation.AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.AuditLoggingConfig{Enabled: true}), &buf
}

func requestWith(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	audit, buf := newAuditBuffer()
	sc := newServerContext(t, audit)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)
	result, err := wrapped(context.Background(), requestWith(map[string]interface{}{"user": "alice"}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
	assert.False(t, result.IsError)

	out := buf.String()
	assert.Contains(t, out, "action_completed")
	assert.Contains(t, out, "user=alice")
	assert.Contains(t, out, "operation=test_tool")
	assert.Contains(t, out, "surface=mcp")
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	audit, buf := newAuditBuffer()
	sc := newServerContext(t, audit)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})

	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, buf.String(), "action_failed")
	assert.Contains(t, buf.String(), "test error")
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	audit, buf := newAuditBuffer()
	sc := newServerContext(t, audit)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("error message"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, buf.String(), "action_failed")
	assert.Contains(t, buf.String(), "error message")
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	sc := newServerContext(t, nil)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandler_RegistersOnMCPServer(t *testing.T) {
	audit, buf := newAuditBuffer()
	sc := newServerContext(t, audit)

	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0", mcpserver.WithToolCapabilities(true))
	mcpSrv.AddTool(mcp.NewTool("echo_tool"), InstrumentedToolHandler("echo_tool", sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		}))

	tool, ok := mcpSrv.ListTools()["echo_tool"]
	require.True(t, ok)

	result, err := tool.Handler(context.Background(), requestWith(map[string]interface{}{"user": "bob"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, buf.String(), "operation=echo_tool")
}
