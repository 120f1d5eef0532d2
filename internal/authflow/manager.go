package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
)

const (
	// DefaultBaseURL is the externally reachable address used when none is configured.
	DefaultBaseURL = "http://localhost:5000"

	// CallbackPathPrefix is the route prefix of the provider callback.
	CallbackPathPrefix = "/oauth2/callback/"
)

// Config holds the dependencies of a Manager.
type Config struct {
	// BaseURL is the scheme://host[:port] the provider redirects back to.
	BaseURL string

	Provider Provider
	Store    credstore.Store

	// States is optional; a StateIssuer with a random secret is created when nil.
	States *StateIssuer

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// Manager runs the per-user authorization handshake.
type Manager struct {
	baseURL  string
	provider Provider
	store    credstore.Store
	states   *StateIssuer
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
}

// NewManager creates a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("oauth provider cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("credential store cannot be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	states := cfg.States
	if states == nil {
		var err error
		states, err = NewStateIssuer(nil, DefaultStateTTL)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		baseURL:  baseURL,
		provider: cfg.Provider,
		store:    cfg.Store,
		states:   states,
		logger:   logger.With(logging.Service("authflow")),
		metrics:  cfg.Metrics,
		audit:    cfg.Audit,
	}, nil
}

// BaseURL returns the normalized base URL.
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// RedirectURL returns the callback address registered for user.
func (m *Manager) RedirectURL(user string) string {
	return m.baseURL + CallbackPathPrefix + url.PathEscape(user)
}

// AuthPath returns the path that starts the handshake for user.
func AuthPath(user string) string {
	return "/auth/" + url.PathEscape(user)
}

// Begin starts a handshake for user and returns the provider consent URL.
// It never reads or writes the credential store.
func (m *Manager) Begin(user string) (string, error) {
	if err := credstore.ValidateUser(user); err != nil {
		return "", err
	}

	state, err := m.states.Issue(user)
	if err != nil {
		m.metrics.RecordOAuthHandshake(context.Background(), instrumentation.OAuthStageBegin, instrumentation.OAuthResultFailure)
		return "", err
	}

	m.metrics.RecordOAuthHandshake(context.Background(), instrumentation.OAuthStageBegin, instrumentation.OAuthResultSuccess)
	m.logger.Info("authorization started", logging.User(user))
	return m.provider.AuthCodeURL(m.RedirectURL(user), state), nil
}

// Pending reports whether user has an unexpired handshake in flight.
func (m *Manager) Pending(user string) bool {
	return m.states.Pending(user)
}

// Complete finishes the handshake for user from the callback query.
//
// The store is written only after the state check and the code exchange
// both succeed; every failure leaves the previously saved grant in place.
func (m *Manager) Complete(ctx context.Context, user string, query url.Values) (*credstore.Grant, error) {
	if err := credstore.ValidateUser(user); err != nil {
		return nil, err
	}
	logger := m.logger.With(logging.User(user))

	if err := m.states.Consume(user, query.Get("state")); err != nil {
		m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, instrumentation.OAuthResultRejected)
		logger.Warn("authorization callback rejected", logging.Err(err))
		return nil, err
	}

	if providerErr := query.Get("error"); providerErr != "" {
		err := callbackError(providerErr, query.Get("error_description"))
		result := instrumentation.OAuthResultFailure
		if errors.Is(err, ErrConsentDenied) {
			result = instrumentation.OAuthResultDenied
		}
		m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, result)
		logger.Info("authorization not granted", logging.Err(err))
		return nil, err
	}

	code := query.Get("code")
	if code == "" {
		m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("%w: callback carries no authorization code", ErrExchange)
	}

	start := time.Now()
	tok, err := m.provider.Exchange(ctx, m.RedirectURL(user), code)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceOAuth, instrumentation.OperationExchange, status, time.Since(start))
	if err != nil {
		m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, instrumentation.OAuthResultFailure)
		logger.Error("authorization code exchange failed", logging.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}

	grant := credstore.GrantFromToken(tok, grantedScopes(tok, m.provider.Scopes()))

	action := instrumentation.NewAction("grant_saved").ForUser(user).WithSpanContext(ctx)
	if err := m.store.Save(ctx, user, grant); err != nil {
		m.audit.Log(action.Complete(err))
		m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to save grant: %w", err)
	}
	m.audit.Log(action.Complete(nil))
	m.metrics.RecordOAuthHandshake(ctx, instrumentation.OAuthStageCallback, instrumentation.OAuthResultSuccess)

	logger.Info("authorization complete",
		slog.Bool("refresh_token", grant.RefreshToken != ""),
		slog.String("access_token", logging.SanitizeToken(grant.AccessToken)),
	)
	return grant, nil
}

func callbackError(code, description string) error {
	if code == "access_denied" {
		return ErrConsentDenied
	}
	if description != "" {
		return fmt.Errorf("%w: provider returned %s: %s", ErrExchange, code, description)
	}
	return fmt.Errorf("%w: provider returned %s", ErrExchange, code)
}

// grantedScopes prefers the scope list echoed in the token response.
func grantedScopes(tok *oauth2.Token, requested []string) []string {
	if raw, ok := tok.Extra("scope").(string); ok && raw != "" {
		return strings.Fields(raw)
	}
	return requested
}
