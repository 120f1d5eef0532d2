package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
	"github.com/teemow/quickcal/internal/server"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		opts          appOptions
		httpAddr      string
		metricsConfig MetricsConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server for authorization and event creation",
		Long: `Start the HTTP server.

Users connect their Google Calendar by opening /auth/<user>; Google redirects
back to /oauth2/callback/<user> on the configured base URL and the grant is
stored for that user.

Events are created through the JSON API:
  POST /api/events         structured fields for one or more users
  POST /api/events/parse   sentence to draft, nothing is created
  POST /api/events/quick   sentence to event for one or more users

Send SIGHUP to reload the attendee directory.

Environment variables are used for any flag not given explicitly; see the
flag descriptions. Instrumentation is configured through
INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER and
OTEL_EXPORTER_OTLP_ENDPOINT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.loadEnv(cmd)
			envOverride(cmd, "addr", "HTTP_ADDR", &httpAddr)
			envOverrideBool(cmd, "metrics", "METRICS_ENABLED", &metricsConfig.Enabled)
			envOverride(cmd, "metrics-addr", "METRICS_ADDR", &metricsConfig.Addr)
			return runServe(cmd.Context(), &opts, httpAddr, metricsConfig)
		},
	}

	opts.addFlags(cmd)
	opts.addStateFlags(cmd)
	cmd.Flags().StringVar(&httpAddr, "addr", server.DefaultHTTPAddr, "HTTP listen address (env: HTTP_ADDR)")
	cmd.Flags().BoolVar(&metricsConfig.Enabled, "metrics", true, "Serve Prometheus metrics on a separate listener (env: METRICS_ENABLED)")
	cmd.Flags().StringVar(&metricsConfig.Addr, "metrics-addr", ":9090", "Metrics listen address (env: METRICS_ADDR)")

	return cmd
}

func runServe(ctx context.Context, opts *appOptions, httpAddr string, metricsConfig MetricsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()

	// Initialize instrumentation provider
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

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	a, err := newApp(shutdownCtx, opts, appDeps{
		logger:   logger,
		metrics:  metrics,
		audit:    audit,
		withAuth: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("credential store close failed", logging.Err(err))
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx, server.ServerContextConfig{
		Scheduler: a.scheduler,
		Auth:      a.auth,
		Store:     a.store,
		Logger:    logger,
		Metrics:   metrics,
		Audit:     audit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	httpServer, err := server.NewHTTPServer(serverContext, server.HTTPConfig{Addr: httpAddr})
	if err != nil {
		return err
	}

	go reloadOnHangup(shutdownCtx, a, logger)

	logger.Info("authorization links",
		slog.String("example", serverContext.AuthURL("me")),
		slog.String("callback", a.auth.RedirectURL("me")),
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// reloadOnHangup reloads the attendee directory on every SIGHUP until ctx ends.
func reloadOnHangup(ctx context.Context, a *app, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if a.directory == nil {
				continue
			}
			if err := a.directory.Reload(); err != nil {
				logger.Error("attendee directory reload failed", logging.Err(err))
				continue
			}
			logger.Info("attendee directory reloaded",
				slog.String("path", a.directory.Path()),
				slog.Int("entries", a.directory.Len()),
			)
		}
	}
}
