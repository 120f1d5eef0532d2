package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// DefaultHTTPAddr is the listen address of the HTTP server.
const DefaultHTTPAddr = ":5000"

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string

	// AuthRate and AuthBurst limit the authorization routes per client IP.
	AuthRate  rate.Limit
	AuthBurst int

	// APIRate and APIBurst limit the event API per client IP.
	APIRate  rate.Limit
	APIBurst int
}

// HTTPServer serves the authorization callback and the event API.
type HTTPServer struct {
	sc         *ServerContext
	health     *HealthChecker
	router     chi.Router
	httpServer *http.Server
	addr       string
}

// NewHTTPServer creates the HTTP server. When authorization is configured its
// base URL must be https, or http on a loopback host.
func NewHTTPServer(sc *ServerContext, cfg HTTPConfig) (*HTTPServer, error) {
	if sc == nil {
		return nil, fmt.Errorf("server context cannot be nil")
	}
	if sc.Auth() != nil {
		if err := validateHTTPSRequirement(sc.Auth().BaseURL()); err != nil {
			return nil, err
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultHTTPAddr
	}
	if cfg.AuthRate == 0 {
		cfg.AuthRate, cfg.AuthBurst = DefaultAuthRate, DefaultAuthBurst
	}
	if cfg.APIRate == 0 {
		cfg.APIRate, cfg.APIBurst = DefaultAPIRate, DefaultAPIBurst
	}

	s := &HTTPServer{
		sc:     sc,
		health: NewHealthChecker(sc),
		addr:   cfg.Addr,
	}
	s.router = s.routes(cfg)
	return s, nil
}

func (s *HTTPServer) routes(cfg HTTPConfig) chi.Router {
	authLimiter := NewIPRateLimiter(s.sc.Context(), cfg.AuthRate, cfg.AuthBurst)
	apiLimiter := NewIPRateLimiter(s.sc.Context(), cfg.APIRate, cfg.APIBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observe(s.sc.Logger(), s.sc.Metrics()))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	s.health.RegisterHealthEndpoints(r)

	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware())
		r.Get("/auth", s.handleAuthForm)
		r.Get("/auth/{user}", s.handleAuth)
		r.Get("/oauth2/callback/{user}", s.handleCallback)
	})

	r.Group(func(r chi.Router) {
		r.Use(apiLimiter.Middleware())
		r.Get("/whoami/{user}", s.handleWhoAmI)
		r.Route("/api/events", func(r chi.Router) {
			r.Post("/", s.handleCreateEvent)
			r.Post("/parse", s.handleParseEvent)
			r.Post("/quick", s.handleQuickAdd)
		})
	})

	return r
}

// Handler returns the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Health returns the health checker, e.g. to mark the server not ready
// during shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Quick-add waits on the language model and the calendar.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.sc.Logger().Info("starting HTTP server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// validateHTTPSRequirement allows HTTP only for loopback addresses
// (localhost, 127.0.0.1, ::1); Google rejects other plain-HTTP redirect URIs.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth redirects require HTTPS (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
