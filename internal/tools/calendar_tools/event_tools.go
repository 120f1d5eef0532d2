package calendar_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/scheduler"
	"github.com/teemow/quickcal/internal/server"
	"github.com/teemow/quickcal/internal/tools/batch"
	"github.com/teemow/quickcal/internal/tools/common"
)

const usersDescription = "User identifiers to create the event for: a single user, a comma-separated list or an array. " +
	"The event is created in each user's primary calendar."

// scheduleResult reports a dispatched event per user.
type scheduleResult struct {
	Draft      event.Draft `json:"draft"`
	Unresolved []string    `json:"unresolved_attendees,omitempty"`
	batch.BatchResult
}

// RegisterEventTools registers the event creation and parsing tools.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event in the primary calendar of one or more users. Attendees receive invitations."),
		mcp.WithString("users",
			mcp.Required(),
			mcp.Description(usersDescription),
		),
		mcp.WithString("summary",
			mcp.Description("Event title (default: '"+event.DefaultSummary+"')"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format with offset, e.g., '2025-09-03T15:00:00+09:00')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format with offset, e.g., '2025-09-03T16:00:00+09:00')"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses or directory names"),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandler("calendar_create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	parseEventTool := mcp.NewTool("calendar_parse_event",
		mcp.WithDescription("Turn a natural language sentence into an event draft without creating anything"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Sentence describing the event, e.g., 'Lunch with Bob tomorrow at noon for an hour'"),
		),
	)
	s.AddTool(parseEventTool, common.InstrumentedToolHandler("calendar_parse_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleParseEvent(ctx, request, sc)
		}))

	quickAddTool := mcp.NewTool("calendar_quick_add",
		mcp.WithDescription("Turn a natural language sentence into an event and create it in the primary calendar of one or more users"),
		mcp.WithString("users",
			mcp.Required(),
			mcp.Description(usersDescription),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Sentence describing the event, e.g., 'Standup with alice@example.com Friday 9am for 15 minutes'"),
		),
	)
	s.AddTool(quickAddTool, common.InstrumentedToolHandler("calendar_quick_add", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuickAdd(ctx, request, sc)
		}))

	return nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	users, err := common.UsersFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	attendees, err := common.StringsFromArgs(args, "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draft := event.Draft{
		Summary:   stringArg(args, "summary"),
		Start:     stringArg(args, "start"),
		End:       stringArg(args, "end"),
		Attendees: attendees,
	}

	report, err := sc.Scheduler().Schedule(ctx, users, draft)
	if err != nil {
		return errorResult(err), nil
	}
	return reportResult(report)
}

func handleParseEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	text := stringArg(request.GetArguments(), "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	preview, err := sc.Scheduler().Preview(ctx, text)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(preview)
}

func handleQuickAdd(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	users, err := common.UsersFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := stringArg(args, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	report, err := sc.Scheduler().ScheduleText(ctx, users, text)
	if err != nil {
		return errorResult(err), nil
	}
	return reportResult(report)
}

func reportResult(report *scheduler.Report) (*mcp.CallToolResult, error) {
	return jsonResult(scheduleResult{
		Draft:       report.Draft,
		Unresolved:  report.Unresolved,
		BatchResult: batch.Summarize(batch.FromOutcomes(report.Outcomes, scheduler.Explain)),
	})
}

func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
