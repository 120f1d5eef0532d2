package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/server"
)

// SurfaceMCP is the audit surface name for tool invocations.
const SurfaceMCP = "mcp"

// ToolHandler is the handler type MCPServer.AddTool accepts.
type ToolHandler = mcpserver.ToolHandlerFunc

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging. A result flagged IsError counts as a failed invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		action := instrumentation.NewAction("tool_invocation").
			Via(SurfaceMCP).
			WithService("mcp", toolName).
			WithSpanContext(ctx)
		if user := UserFromArgs(request.GetArguments()); user != "" {
			action.ForUser(user)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}

		status := instrumentation.StatusSuccess
		if failure != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, failure)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		auditLogger.Log(action.Complete(failure))

		return result, err
	}
}

// resultText returns the text of the first text content in result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return "tool returned an error"
}
