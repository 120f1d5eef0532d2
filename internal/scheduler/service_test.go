package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickcal/internal/attendee"
	"github.com/teemow/quickcal/internal/calendar"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/nlp"
)

type stubExtractor struct {
	draft event.Draft
	err   error
	refs  []time.Time
}

func (s *stubExtractor) Extract(_ context.Context, _ string, ref time.Time) (event.Draft, error) {
	s.refs = append(s.refs, ref)
	return s.draft, s.err
}

type recordingDispatcher struct {
	drafts []event.Draft
	users  [][]string
	fail   map[string]error
}

func (d *recordingDispatcher) DispatchAll(_ context.Context, users []string, draft event.Draft) []event.Outcome {
	d.drafts = append(d.drafts, draft)
	d.users = append(d.users, users)
	outcomes := make([]event.Outcome, 0, len(users))
	for _, u := range users {
		if err := d.fail[u]; err != nil {
			outcomes = append(outcomes, event.Outcome{User: u, Err: err})
			continue
		}
		outcomes = append(outcomes, event.Outcome{User: u, Created: &event.Created{
			User:    u,
			EventID: "ev-" + u,
			Link:    "https://calendar.google.com/event?eid=" + u,
			Summary: draft.Title(),
		}})
	}
	return outcomes
}

func (d *recordingDispatcher) PrimaryCalendar(_ context.Context, user string) (*calendar.CalendarInfo, error) {
	if err := d.fail[user]; err != nil {
		return nil, err
	}
	return &calendar.CalendarInfo{ID: user + "@example.com", Summary: user + "'s calendar"}, nil
}

var fixedNow = time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, ex Extractor, d Dispatcher) *Service {
	t.Helper()
	dir, err := attendee.NewDirectory(map[string]string{"Alice": "alice@example.com", "bob": "bob@example.com"})
	require.NoError(t, err)

	s, err := New(Config{
		Extractor:  ex,
		Dispatcher: d,
		Directory:  dir,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return s
}

func validDraft() event.Draft {
	return event.Draft{
		Summary:   "Planning",
		Start:     "2025-09-02T13:00:00+09:00",
		End:       "2025-09-02T14:00:00+09:00",
		Attendees: []string{" alice ", "carol", "dave@example.org", ""},
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	s, err := New(Config{Dispatcher: &recordingDispatcher{}})
	require.NoError(t, err)
	assert.False(t, s.CanExtract())
	assert.Nil(t, s.Directory())
}

func TestSchedule(t *testing.T) {
	d := &recordingDispatcher{fail: map[string]error{
		"bob": &event.NotAuthorizedError{User: "bob", AuthPath: "/auth/bob"},
	}}
	s := newTestService(t, nil, d)

	report, err := s.Schedule(context.Background(), []string{"alice", " bob", "alice", ""}, validDraft())
	require.NoError(t, err)

	require.Len(t, d.users, 1)
	assert.Equal(t, []string{"alice", "bob"}, d.users[0])
	assert.Equal(t, []string{"alice@example.com", "carol", "dave@example.org"}, d.drafts[0].Attendees)

	assert.Equal(t, []string{"carol"}, report.Unresolved)
	require.Len(t, report.Outcomes, 2)
	assert.True(t, report.Outcomes[0].OK())
	assert.ErrorIs(t, report.Outcomes[1].Err, event.ErrNotAuthorized)
	assert.Equal(t, 1, report.Created())
	assert.Equal(t, 1, report.Failed())
}

func TestSchedule_InvalidDraftNeverDispatches(t *testing.T) {
	tests := []struct {
		name    string
		draft   event.Draft
		wantErr error
	}{
		{
			name:    "missing end",
			draft:   event.Draft{Summary: "x", Start: "2025-09-02T13:00:00+09:00"},
			wantErr: event.ErrIncompleteDraft,
		},
		{
			name:    "missing start",
			draft:   event.Draft{Summary: "x", End: "2025-09-02T13:00:00+09:00"},
			wantErr: event.ErrIncompleteDraft,
		},
		{
			name:    "inverted",
			draft:   event.Draft{Start: "2025-09-02T14:00:00+09:00", End: "2025-09-02T13:00:00+09:00"},
			wantErr: event.ErrInvalidDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			s := newTestService(t, nil, d)

			_, err := s.Schedule(context.Background(), []string{"alice"}, tt.draft)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, d.drafts)
		})
	}
}

func TestSchedule_NoUsers(t *testing.T) {
	d := &recordingDispatcher{}
	s := newTestService(t, nil, d)

	_, err := s.Schedule(context.Background(), []string{" ", ""}, validDraft())
	assert.ErrorIs(t, err, ErrNoUsers)
	assert.Empty(t, d.drafts)
}

func TestScheduleText(t *testing.T) {
	ex := &stubExtractor{draft: validDraft()}
	d := &recordingDispatcher{}
	s := newTestService(t, ex, d)

	report, err := s.ScheduleText(context.Background(), []string{"alice"}, "planning today 1-2pm with alice and carol")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created())
	assert.Equal(t, []time.Time{fixedNow}, ex.refs)
}

func TestScheduleText_Errors(t *testing.T) {
	t.Run("extraction failure is returned", func(t *testing.T) {
		ex := &stubExtractor{err: fmt.Errorf("%w: %w", nlp.ErrExtractionService, errors.New("timeout"))}
		d := &recordingDispatcher{}
		s := newTestService(t, ex, d)

		_, err := s.ScheduleText(context.Background(), []string{"alice"}, "lunch")
		assert.ErrorIs(t, err, nlp.ErrExtractionService)
		assert.Empty(t, d.drafts)
	})

	t.Run("incomplete extraction fails fast", func(t *testing.T) {
		ex := &stubExtractor{draft: event.Draft{Summary: "Call", Start: "2025-09-02T18:00:00+09:00", Attendees: []string{}}}
		d := &recordingDispatcher{}
		s := newTestService(t, ex, d)

		_, err := s.ScheduleText(context.Background(), []string{"alice"}, "call at 6")
		assert.ErrorIs(t, err, event.ErrIncompleteDraft)
		assert.Len(t, ex.refs, 1)
		assert.Empty(t, d.drafts)
	})

	t.Run("no extractor", func(t *testing.T) {
		s := newTestService(t, nil, &recordingDispatcher{})
		_, err := s.ScheduleText(context.Background(), []string{"alice"}, "lunch")
		assert.ErrorIs(t, err, ErrExtractionUnavailable)

		_, err = s.Preview(context.Background(), "lunch")
		assert.ErrorIs(t, err, ErrExtractionUnavailable)
	})

	t.Run("no users skips extraction", func(t *testing.T) {
		ex := &stubExtractor{draft: validDraft()}
		s := newTestService(t, ex, &recordingDispatcher{})
		_, err := s.ScheduleText(context.Background(), nil, "lunch")
		assert.ErrorIs(t, err, ErrNoUsers)
		assert.Empty(t, ex.refs)
	})
}

func TestPreview(t *testing.T) {
	ex := &stubExtractor{draft: validDraft()}
	d := &recordingDispatcher{}
	s := newTestService(t, ex, d)

	p, err := s.Preview(context.Background(), "planning")
	require.NoError(t, err)
	assert.True(t, p.Ready)
	assert.Empty(t, p.Problem)
	assert.Equal(t, []string{"alice@example.com", "carol", "dave@example.org"}, p.Draft.Attendees)
	assert.Equal(t, []string{"carol"}, p.Unresolved)
	assert.Empty(t, d.drafts, "preview never dispatches")
}

func TestPreview_Incomplete(t *testing.T) {
	ex := &stubExtractor{draft: event.Draft{Summary: "Call mom", Start: "2025-09-02T18:00:00+09:00", Attendees: []string{}}}
	s := newTestService(t, ex, &recordingDispatcher{})

	p, err := s.Preview(context.Background(), "call mom at 6")
	require.NoError(t, err)
	assert.False(t, p.Ready)
	assert.Contains(t, p.Problem, "start and an end")
}

func TestWhoAmI(t *testing.T) {
	d := &recordingDispatcher{fail: map[string]error{"bob": event.ErrNotAuthorized}}
	s := newTestService(t, nil, d)

	info, err := s.WhoAmI(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice's calendar", info.Summary)

	_, err = s.WhoAmI(context.Background(), "bob")
	assert.ErrorIs(t, err, event.ErrNotAuthorized)
}

func TestSplitUsers(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob"}, SplitUsers(" alice, bob ,,alice"))
	assert.Empty(t, SplitUsers(""))
}
