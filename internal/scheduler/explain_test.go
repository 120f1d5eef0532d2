package scheduler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/nlp"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "not authorized names the step",
			err:  fmt.Errorf("dispatch: %w", &event.NotAuthorizedError{User: "alice", AuthPath: "http://localhost:5000/auth/alice"}),
			want: "Open http://localhost:5000/auth/alice to authorize",
		},
		{
			name: "invalid user",
			err:  credstore.ValidateUser("a/b"),
			want: "letters, digits",
		},
		{
			name: "missing state",
			err:  authflow.ErrMissingState,
			want: "no state",
		},
		{
			name: "state mismatch",
			err:  authflow.ErrStateMismatch,
			want: "stale",
		},
		{
			name: "consent denied",
			err:  fmt.Errorf("%w: access_denied", authflow.ErrConsentDenied),
			want: "declined",
		},
		{
			name: "exchange",
			err:  authflow.ErrExchange,
			want: "authorization code",
		},
		{
			name: "extraction service keeps the cause",
			err:  fmt.Errorf("%w: %w", nlp.ErrExtractionService, errors.New("429 quota exceeded")),
			want: "unavailable (429 quota exceeded)",
		},
		{
			name: "malformed extraction",
			err:  &nlp.MalformedExtractionError{Reason: "no JSON object", Preview: "sorry"},
			want: "could not be understood",
		},
		{
			name: "empty sentence",
			err:  nlp.ErrEmptySentence,
			want: "Describe the event",
		},
		{
			name: "incomplete draft",
			err:  event.ErrIncompleteDraft,
			want: "start and an end",
		},
		{
			name: "invalid draft",
			err:  fmt.Errorf("%w: end before start", event.ErrInvalidDraft),
			want: "RFC 3339",
		},
		{
			name: "provider message",
			err:  &event.ProviderError{User: "alice", Operation: "insert", Message: "Forbidden (HTTP 403)"},
			want: "rejected the request: Forbidden (HTTP 403).",
		},
		{
			name: "extraction not configured",
			err:  ErrExtractionUnavailable,
			want: "OPENAI_API_KEY",
		},
		{
			name: "no users",
			err:  ErrNoUsers,
			want: "at least one user",
		},
		{
			name: "unknown error verbatim",
			err:  errors.New("disk full"),
			want: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}
