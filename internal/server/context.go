package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/scheduler"
)

// Pinger is implemented by credential stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerContextConfig holds the dependencies shared by the HTTP and MCP surfaces.
type ServerContextConfig struct {
	Scheduler *scheduler.Service
	// Auth is optional; without it the authorization routes and tools are unavailable.
	Auth *authflow.Manager
	// BaseURL is the public address of the HTTP surface. Used for
	// authorization links when Auth is nil (the stdio MCP server).
	BaseURL string
	// Store is checked by the readiness probe when it implements Pinger.
	Store any

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// ServerContext holds the context for the HTTP and MCP servers
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Service
	auth      *authflow.Manager
	baseURL   string
	pinger    Pinger
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	mu        sync.RWMutex
	shutdown  bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg ServerContextConfig) (*ServerContext, error) {
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sc := &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		scheduler: cfg.Scheduler,
		auth:      cfg.Auth,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		logger:    logger,
		metrics:   cfg.Metrics,
		audit:     cfg.Audit,
	}
	if p, ok := cfg.Store.(Pinger); ok {
		sc.pinger = p
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Scheduler returns the scheduling pipeline.
func (sc *ServerContext) Scheduler() *scheduler.Service {
	return sc.scheduler
}

// Auth returns the authorization manager, or nil when not configured.
func (sc *ServerContext) Auth() *authflow.Manager {
	return sc.auth
}

// AuthURL returns the absolute address that starts authorization for user.
// Without an authorization manager or base URL only the path is returned.
func (sc *ServerContext) AuthURL(user string) string {
	switch {
	case sc.auth != nil:
		return sc.auth.BaseURL() + authflow.AuthPath(user)
	case sc.baseURL != "":
		return sc.baseURL + authflow.AuthPath(user)
	default:
		return authflow.AuthPath(user)
	}
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Ping checks the credential store when it supports health checks.
func (sc *ServerContext) Ping(ctx context.Context) error {
	if sc.pinger == nil {
		return nil
	}
	return sc.pinger.Ping(ctx)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
