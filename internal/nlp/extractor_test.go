package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickcal/internal/event"
)

// stubCompleter returns a canned reply and records the last request.
type stubCompleter struct {
	reply string
	err   error
	calls int
	last  Request
}

func (s *stubCompleter) Complete(_ context.Context, req Request) (string, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

func (s *stubCompleter) Model() string { return "stub-model" }

func newTestExtractor(t *testing.T, stub *stubCompleter, jsonMode bool) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{Completer: stub, JSONMode: jsonMode})
	require.NoError(t, err)
	return e
}

func TestNewExtractor(t *testing.T) {
	_, err := NewExtractor(Config{})
	assert.Error(t, err)

	e := newTestExtractor(t, &stubCompleter{}, false)
	assert.Equal(t, DefaultTimeZone, e.Location().String())
}

func TestExtract(t *testing.T) {
	stub := &stubCompleter{
		reply: `{"summary":"회의","start":"2025-09-02T13:00:00+09:00","end":"2025-09-02T15:00:00+09:00","attendees":[]}`,
	}
	e := newTestExtractor(t, stub, true)

	// 2025-09-01T20:00Z is already 2025-09-02 in Seoul
	ref := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)
	draft, err := e.Extract(context.Background(), "  오늘 오후 1시~3시 회의 ", ref)
	require.NoError(t, err)

	assert.Equal(t, event.Draft{
		Summary:   "회의",
		Start:     "2025-09-02T13:00:00+09:00",
		End:       "2025-09-02T15:00:00+09:00",
		Attendees: []string{},
	}, draft)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "오늘 오후 1시~3시 회의", stub.last.Sentence)
	assert.True(t, stub.last.JSONMode)
	assert.Contains(t, stub.last.Instruction, "Today is 2025-09-02 (Tuesday) in time zone Asia/Seoul")
}

func TestExtract_IncompleteDraftReturnedAsIs(t *testing.T) {
	stub := &stubCompleter{reply: `{"summary":"Call mom","start":"2025-09-02T18:00:00+09:00","end":"","attendees":[]}`}
	e := newTestExtractor(t, stub, false)

	draft, err := e.Extract(context.Background(), "call mom at 6pm", time.Now())
	require.NoError(t, err)
	assert.False(t, draft.Complete())
	assert.Empty(t, draft.End)
	assert.ErrorIs(t, draft.Validate(), event.ErrIncompleteDraft)
	assert.Equal(t, 1, stub.calls, "no clarifying round-trip")
}

func TestExtract_ServiceError(t *testing.T) {
	cause := errors.New("429 quota exceeded")
	stub := &stubCompleter{err: cause}
	e := newTestExtractor(t, stub, false)

	_, err := e.Extract(context.Background(), "lunch tomorrow", time.Now())
	require.ErrorIs(t, err, ErrExtractionService)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "429 quota exceeded")
	assert.Equal(t, 1, stub.calls, "no retry")
}

func TestExtract_Malformed(t *testing.T) {
	stub := &stubCompleter{reply: "Sorry, I can't help with that."}
	e := newTestExtractor(t, stub, false)

	_, err := e.Extract(context.Background(), "lunch tomorrow", time.Now())
	require.ErrorIs(t, err, ErrMalformedExtraction)

	var mee *MalformedExtractionError
	require.ErrorAs(t, err, &mee)
	assert.Equal(t, "Sorry, I can't help with that.", mee.Preview)
}

func TestExtract_EmptySentence(t *testing.T) {
	stub := &stubCompleter{}
	e := newTestExtractor(t, stub, false)

	_, err := e.Extract(context.Background(), " \n ", time.Now())
	assert.ErrorIs(t, err, ErrEmptySentence)
	assert.Zero(t, stub.calls)
}
