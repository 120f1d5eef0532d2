package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // zone names must resolve without system tzdata

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/quickcal/internal/calendar"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
)

// Calendar is the subset of the calendar client used by the Dispatcher.
type Calendar interface {
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
	GetPrimaryCalendar(ctx context.Context) (*calendar.CalendarInfo, error)
}

// CalendarFactory builds a Calendar authenticated with grant.
type CalendarFactory func(ctx context.Context, grant *credstore.Grant) (Calendar, error)

// GoogleCalendars returns a CalendarFactory backed by the Google Calendar API.
// conf supplies the client credentials used to refresh expired access tokens.
func GoogleCalendars(conf *oauth2.Config, opts ...option.ClientOption) CalendarFactory {
	return func(ctx context.Context, grant *credstore.Grant) (Calendar, error) {
		client, err := calendar.NewClientForToken(ctx, conf, grant.Token(), opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// AuthPathFunc returns the path that starts authorization for user.
type AuthPathFunc func(user string) string

// Config holds the dependencies of a Dispatcher.
type Config struct {
	Store     credstore.Store
	Calendars CalendarFactory

	// AuthPath names the authorization step in ErrNotAuthorized errors.
	AuthPath AuthPathFunc

	// TimeZone is sent with each event when set (IANA name).
	TimeZone string

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Dispatcher writes drafts into users' primary calendars.
type Dispatcher struct {
	store     credstore.Store
	calendars CalendarFactory
	authPath  AuthPathFunc
	timeZone  string
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	now       func() time.Time
}

// Created describes an event written to a user's calendar.
type Created struct {
	User      string    `json:"user"`
	EventID   string    `json:"event_id"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees,omitempty"`
}

// Outcome is the result of one user's dispatch in DispatchAll.
// Exactly one of Created and Err is set.
type Outcome struct {
	User    string
	Created *Created
	Err     error
}

// OK reports whether the event was created.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Created != nil
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("credential store cannot be nil")
	}
	if cfg.Calendars == nil {
		return nil, fmt.Errorf("calendar factory cannot be nil")
	}
	if cfg.TimeZone != "" {
		if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
			return nil, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
		}
	}

	d := &Dispatcher{
		store:     cfg.Store,
		calendars: cfg.Calendars,
		authPath:  cfg.AuthPath,
		timeZone:  cfg.TimeZone,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		audit:     cfg.Audit,
		now:       cfg.Now,
	}
	if d.authPath == nil {
		d.authPath = func(user string) string { return "/auth/" + user }
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.logger = d.logger.With(logging.Service("event"))
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// calendarFor loads the grant of user and builds a client for it.
func (d *Dispatcher) calendarFor(ctx context.Context, user string) (Calendar, error) {
	if err := credstore.ValidateUser(user); err != nil {
		return nil, err
	}

	grant, ok, err := d.store.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load grant for %q: %w", user, err)
	}
	if !ok || !grant.Usable(d.now()) {
		return nil, &NotAuthorizedError{User: user, AuthPath: d.authPath(user)}
	}

	cal, err := d.calendars(ctx, grant)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client for %q: %w", user, err)
	}
	return cal, nil
}

// Dispatch creates draft in the primary calendar of user, notifying all
// attendees. The draft is validated before the store or the provider is
// touched. Nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, user string, draft Draft) (*Created, error) {
	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "event.dispatch",
		instrumentation.NewSpanAttributeBuilder().
			WithUser(user).
			WithAttendeeCount(len(draft.Attendees)).
			Build()...,
	)
	defer span.End()

	created, err := d.dispatch(ctx, user, draft)

	d.metrics.RecordDispatch(ctx, dispatchResult(err), user, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		d.logger.Warn("event dispatch failed", logging.User(user), logging.Err(err))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	span.SetAttributes(attribute.String(instrumentation.SpanAttrEventID, created.EventID))
	d.logger.Info("event created",
		logging.User(user),
		slog.String("event_id", created.EventID),
		slog.Int("attendee_count", len(created.Attendees)),
	)
	return created, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, user string, draft Draft) (*Created, error) {
	startTime, endTime, err := draft.Times()
	if err != nil {
		return nil, err
	}

	cal, err := d.calendarFor(ctx, user)
	if err != nil {
		return nil, err
	}

	input := calendar.EventInput{
		Summary:     draft.Title(),
		Start:       startTime,
		End:         endTime,
		TimeZone:    d.timeZone,
		Attendees:   draft.Attendees,
		SendUpdates: calendar.SendUpdatesAll,
	}

	action := instrumentation.NewAction("event_created").
		ForUser(user).
		WithService(instrumentation.ServiceCalendar, instrumentation.OperationInsert).
		WithAttendees(draft.Attendees).
		WithSpanContext(ctx)

	apiStart := time.Now()
	ev, err := cal.CreateEvent(ctx, calendar.PrimaryCalendarID, input)
	d.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationInsert, statusOf(err), time.Since(apiStart))
	if err != nil {
		perr := &ProviderError{
			User:       user,
			Operation:  instrumentation.OperationInsert,
			Message:    calendar.ErrorMessage(err),
			StatusCode: calendar.StatusCode(err),
			Err:        err,
		}
		d.audit.Log(action.Complete(perr))
		return nil, perr
	}
	d.audit.Log(action.WithEventID(ev.ID).Complete(nil))

	return &Created{
		User:      user,
		EventID:   ev.ID,
		Link:      ev.HTMLLink,
		Summary:   input.Summary,
		Start:     startTime,
		End:       endTime,
		Attendees: draft.Attendees,
	}, nil
}

// DispatchAll dispatches draft to each user in order. Every user gets an
// Outcome; one user's failure neither stops nor rolls back the others.
func (d *Dispatcher) DispatchAll(ctx context.Context, users []string, draft Draft) []Outcome {
	outcomes := make([]Outcome, 0, len(users))
	for _, user := range users {
		created, err := d.Dispatch(ctx, user, draft)
		outcomes = append(outcomes, Outcome{User: user, Created: created, Err: err})
	}
	return outcomes
}

// PrimaryCalendar returns the metadata of user's primary calendar.
func (d *Dispatcher) PrimaryCalendar(ctx context.Context, user string) (*calendar.CalendarInfo, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationGet,
		attribute.String(instrumentation.SpanAttrUser, user))
	defer span.End()

	cal, err := d.calendarFor(ctx, user)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	start := time.Now()
	info, err := cal.GetPrimaryCalendar(ctx)
	d.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationGet, statusOf(err), time.Since(start))
	if err != nil {
		perr := &ProviderError{
			User:       user,
			Operation:  instrumentation.OperationGet,
			Message:    calendar.ErrorMessage(err),
			StatusCode: calendar.StatusCode(err),
			Err:        err,
		}
		instrumentation.SetSpanError(span, perr)
		return nil, perr
	}
	instrumentation.SetSpanSuccess(span)
	return info, nil
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

func dispatchResult(err error) string {
	switch {
	case err == nil:
		return instrumentation.DispatchResultCreated
	case errors.Is(err, ErrNotAuthorized):
		return instrumentation.DispatchResultNotAuthorized
	case errors.Is(err, ErrIncompleteDraft), errors.Is(err, ErrInvalidDraft), errors.Is(err, credstore.ErrInvalidUser):
		return instrumentation.DispatchResultInvalid
	case errors.Is(err, ErrProvider):
		return instrumentation.DispatchResultProviderError
	default:
		return instrumentation.StatusError
	}
}
