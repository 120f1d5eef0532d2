package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
	"github.com/teemow/quickcal/internal/server"
	"github.com/teemow/quickcal/internal/tools/calendar_tools"
)

func newMCPCmd() *cobra.Command {
	var opts appOptions

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start an MCP (Model Context Protocol) server on stdin/stdout exposing the
calendar tools to AI assistants.

Authorization still happens in a browser against the HTTP server started by
"quickcal serve"; calendar_auth_url returns the link to open. Both processes
must share the credential store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.loadEnv(cmd)
			return runMCP(cmd.Context(), &opts)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runMCP(ctx context.Context, opts *appOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol; logs go to stderr
	logger := newLogger()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	metrics := provider.Metrics()
	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)

	a, err := newApp(shutdownCtx, opts, appDeps{
		logger:  logger,
		metrics: metrics,
		audit:   audit,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	serverContext, err := server.NewServerContext(shutdownCtx, server.ServerContextConfig{
		Scheduler: a.scheduler,
		BaseURL:   opts.normalizedBaseURL(),
		Store:     a.store,
		Logger:    logger,
		Metrics:   metrics,
		Audit:     audit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}
	return runStdioServer(shutdownCtx, mcpSrv)
}

// newMCPServer creates the MCP server with all tools registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("quickcal", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Calendar tools: %w", err)
	}
	return mcpSrv, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
