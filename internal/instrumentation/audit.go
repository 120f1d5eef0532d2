package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Action captures an operation performed on behalf of a user for audit logging.
// Every grant persisted and every event written to a calendar produces one.
//
// Attendees are third-party addresses. General logs only carry their
// domains; full addresses appear only when PII logging is enabled.
type Action struct {
	// Name of the action (e.g. "grant_saved", "event_created")
	Name string

	// Acting user identifier
	User string

	// Surface that triggered the action (http, mcp, cli)
	Surface string

	ServiceName string
	Operation   string

	// EventID is the provider-assigned identifier, if any
	EventID   string
	Attendees []string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewAction creates a new Action with timing started.
// Call Complete() when the operation finishes.
func NewAction(name string) *Action {
	return &Action{
		Name:      name,
		StartTime: time.Now(),
	}
}

// ForUser sets the acting user.
func (a *Action) ForUser(user string) *Action {
	a.User = user
	return a
}

// Via sets the surface that triggered the action.
func (a *Action) Via(surface string) *Action {
	a.Surface = surface
	return a
}

// WithService sets the Google service and operation.
func (a *Action) WithService(serviceName, operation string) *Action {
	a.ServiceName = serviceName
	a.Operation = operation
	return a
}

// WithAttendees records the attendee addresses of the event.
func (a *Action) WithAttendees(addresses []string) *Action {
	a.Attendees = addresses
	return a
}

// WithEventID records the provider event identifier.
func (a *Action) WithEventID(id string) *Action {
	a.EventID = id
	return a
}

// WithSpanContext extracts trace context from the current span.
func (a *Action) WithSpanContext(ctx context.Context) *Action {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		a.TraceID = span.SpanContext().TraceID().String()
		a.SpanID = span.SpanContext().SpanID().String()
	}
	return a
}

// Complete marks the action as finished. A nil err means success.
func (a *Action) Complete(err error) *Action {
	a.Duration = time.Since(a.StartTime)
	a.Success = err == nil
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// Status returns "success" or "error" based on the Success field.
func (a *Action) Status() string {
	if a.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// When includePII is false, attendees are reduced to their domains.
func (a *Action) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", a.Name),
		slog.String("user", a.User),
		slog.Duration("duration", a.Duration),
		slog.Bool("success", a.Success),
	}

	if a.Surface != "" {
		attrs = append(attrs, slog.String("surface", a.Surface))
	}
	if a.ServiceName != "" {
		attrs = append(attrs, slog.String("service", a.ServiceName))
	}
	if a.Operation != "" {
		attrs = append(attrs, slog.String("operation", a.Operation))
	}
	if a.EventID != "" {
		attrs = append(attrs, slog.String("event_id", a.EventID))
	}
	if len(a.Attendees) > 0 {
		attrs = append(attrs, slog.Int("attendee_count", len(a.Attendees)))
		if includePII {
			attrs = append(attrs, slog.String("attendees", strings.Join(a.Attendees, ",")))
		} else {
			attrs = append(attrs, slog.String("attendee_domains", strings.Join(AttendeeDomains(a.Attendees), ",")))
		}
	}
	if a.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", a.TraceID))
	}
	if a.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", a.SpanID))
	}
	if a.Error != "" {
		attrs = append(attrs, slog.String("error", a.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for user actions.
// A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// PII is not included by default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("log_type", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// Log writes the action. Failures are logged at warn level.
func (al *AuditLogger) Log(a *Action) {
	if al == nil || !al.enabled || a == nil {
		return
	}

	attrs := a.LogAttrs(al.includePII)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if a.Success {
		al.logger.Info("action_completed", args...)
	} else {
		al.logger.Warn("action_failed", args...)
	}
}
