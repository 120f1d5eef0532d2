package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/server"
	"github.com/teemow/quickcal/internal/tools/common"
)

const userDescription = "User identifier (letters, digits, '_' or '-'). Each user authorizes their own Google Calendar."

// authURLResult tells the caller where to send the user.
type authURLResult struct {
	User         string `json:"user"`
	URL          string `json:"url"`
	Instructions string `json:"instructions"`
}

// whoamiResult describes a user's connected calendar.
type whoamiResult struct {
	User       string `json:"user"`
	CalendarID string `json:"calendar_id"`
	Calendar   string `json:"calendar"`
	TimeZone   string `json:"time_zone,omitempty"`
}

// RegisterAccountTools registers the authorization and identity tools.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	authURLTool := mcp.NewTool("calendar_auth_url",
		mcp.WithDescription("Get the link a user opens in a browser to connect their Google Calendar"),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description(userDescription),
		),
	)
	s.AddTool(authURLTool, common.InstrumentedToolHandler("calendar_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthURL(ctx, request, sc)
		}))

	whoamiTool := mcp.NewTool("calendar_whoami",
		mcp.WithDescription("Show the primary calendar a user has connected"),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description(userDescription),
		),
	)
	s.AddTool(whoamiTool, common.InstrumentedToolHandler("calendar_whoami", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWhoAmI(ctx, request, sc)
		}))

	return nil
}

func handleAuthURL(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	user := common.UserFromArgs(request.GetArguments())
	if err := credstore.ValidateUser(user); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	link := sc.AuthURL(user)
	return jsonResult(authURLResult{
		User: user,
		URL:  link,
		Instructions: fmt.Sprintf("Open %s in a browser while the quickcal HTTP server is running, "+
			"sign in with the Google account for %q and grant calendar access.", link, user),
	})
}

func handleWhoAmI(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	user := common.UserFromArgs(request.GetArguments())
	if err := credstore.ValidateUser(user); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := sc.Scheduler().WhoAmI(ctx, user)
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(whoamiResult{
		User:       user,
		CalendarID: info.ID,
		Calendar:   info.Summary,
		TimeZone:   info.TimeZone,
	})
}
