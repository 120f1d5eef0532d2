package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/quickcal/internal/attendee"
	"github.com/teemow/quickcal/internal/calendar"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/logging"
)

var (
	// ErrNoUsers is returned when an event is scheduled for nobody.
	ErrNoUsers = errors.New("no users given")

	// ErrExtractionUnavailable is returned for sentences when no Extractor is configured.
	ErrExtractionUnavailable = errors.New("sentence extraction is not configured")
)

// Extractor turns a sentence into a draft.
type Extractor interface {
	Extract(ctx context.Context, text string, ref time.Time) (event.Draft, error)
}

// Dispatcher writes drafts into users' calendars.
type Dispatcher interface {
	DispatchAll(ctx context.Context, users []string, draft event.Draft) []event.Outcome
	PrimaryCalendar(ctx context.Context, user string) (*calendar.CalendarInfo, error)
}

// Config holds the dependencies of a Service.
type Config struct {
	// Extractor is optional; without it only structured drafts are accepted.
	Extractor  Extractor
	Dispatcher Dispatcher
	// Directory resolves attendee names. May be nil.
	Directory *attendee.Directory
	Logger    *slog.Logger
	// Now supplies the reference date for extraction. Defaults to time.Now.
	Now func() time.Time
}

// Service is the scheduling pipeline.
type Service struct {
	extractor  Extractor
	dispatcher Dispatcher
	directory  *attendee.Directory
	logger     *slog.Logger
	now        func() time.Time
}

// Preview is a draft extracted and normalized but not dispatched.
type Preview struct {
	Draft      event.Draft `json:"draft"`
	Unresolved []string    `json:"unresolved_attendees,omitempty"`
	// Ready is true when the draft can be dispatched as is.
	Ready bool `json:"ready"`
	// Problem explains why the draft is not ready.
	Problem string `json:"problem,omitempty"`
}

// Report is the result of scheduling one draft for several users.
type Report struct {
	Draft      event.Draft     `json:"draft"`
	Unresolved []string        `json:"unresolved_attendees,omitempty"`
	Outcomes   []event.Outcome `json:"-"`
}

// Created returns the number of users the event was created for.
func (r *Report) Created() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of users the event could not be created for.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Created()
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	s := &Service{
		extractor:  cfg.Extractor,
		dispatcher: cfg.Dispatcher,
		directory:  cfg.Directory,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(logging.Service("scheduler"))
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Directory returns the attendee directory, which may be nil.
func (s *Service) Directory() *attendee.Directory {
	return s.directory
}

// CanExtract reports whether sentences can be scheduled.
func (s *Service) CanExtract() bool {
	return s.extractor != nil
}

// Normalize resolves the draft's attendees through the directory.
func (s *Service) Normalize(draft event.Draft) event.Draft {
	draft.Summary = strings.TrimSpace(draft.Summary)
	draft.Start = strings.TrimSpace(draft.Start)
	draft.End = strings.TrimSpace(draft.End)
	draft.Attendees = s.directory.Normalize(draft.Attendees)
	return draft
}

// Preview extracts a draft from text and resolves its attendees without
// dispatching it. An incomplete draft is not an error; Ready is false instead.
func (s *Service) Preview(ctx context.Context, text string) (*Preview, error) {
	if s.extractor == nil {
		return nil, ErrExtractionUnavailable
	}

	draft, err := s.extractor.Extract(ctx, text, s.now())
	if err != nil {
		return nil, err
	}
	draft = s.Normalize(draft)

	p := &Preview{
		Draft:      draft,
		Unresolved: attendee.Unresolved(draft.Attendees),
		Ready:      true,
	}
	if err := draft.Validate(); err != nil {
		p.Ready = false
		p.Problem = Explain(err)
	}
	return p, nil
}

// Schedule normalizes and validates draft, then creates it in the primary
// calendar of every user. An invalid draft fails before any user is
// dispatched. Per-user failures are reported in the Report, not returned.
func (s *Service) Schedule(ctx context.Context, users []string, draft event.Draft) (*Report, error) {
	users = uniqueUsers(users)
	if len(users) == 0 {
		return nil, ErrNoUsers
	}

	draft = s.Normalize(draft)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Draft:      draft,
		Unresolved: attendee.Unresolved(draft.Attendees),
		Outcomes:   s.dispatcher.DispatchAll(ctx, users, draft),
	}
	if len(report.Unresolved) > 0 {
		s.logger.Warn("attendees passed through unresolved", slog.Int("count", len(report.Unresolved)))
	}
	s.logger.Info("event scheduled",
		slog.Int("users", len(users)),
		slog.Int("created", report.Created()),
		slog.Int("failed", report.Failed()),
	)
	return report, nil
}

// ScheduleText extracts a draft from text and schedules it for users.
// A draft missing a start or end fails with event.ErrIncompleteDraft; the
// user is not asked for the missing time.
func (s *Service) ScheduleText(ctx context.Context, users []string, text string) (*Report, error) {
	if len(uniqueUsers(users)) == 0 {
		return nil, ErrNoUsers
	}
	if s.extractor == nil {
		return nil, ErrExtractionUnavailable
	}

	draft, err := s.extractor.Extract(ctx, text, s.now())
	if err != nil {
		return nil, err
	}
	return s.Schedule(ctx, users, draft)
}

// WhoAmI returns the primary calendar of user.
func (s *Service) WhoAmI(ctx context.Context, user string) (*calendar.CalendarInfo, error) {
	return s.dispatcher.PrimaryCalendar(ctx, user)
}

// uniqueUsers trims users and drops blanks and repeats, keeping order.
func uniqueUsers(users []string) []string {
	seen := make(map[string]bool, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// SplitUsers splits a comma-separated user list.
func SplitUsers(list string) []string {
	return uniqueUsers(strings.Split(list, ","))
}
