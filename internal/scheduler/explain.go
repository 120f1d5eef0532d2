package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/nlp"
)

// Explain returns a user-facing sentence describing err and how to fix it.
// Errors from outside the pipeline are returned verbatim.
func Explain(err error) string {
	if err == nil {
		return ""
	}

	var notAuthorized *event.NotAuthorizedError
	var provider *event.ProviderError

	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Sprintf("%s has not connected a Google Calendar yet. Open %s to authorize, then try again.",
			notAuthorized.User, notAuthorized.AuthPath)
	case errors.Is(err, event.ErrNotAuthorized):
		return "This user has not connected a Google Calendar yet. Authorize first, then try again."
	case errors.Is(err, credstore.ErrInvalidUser):
		return "User names may only contain letters, digits, '_' or '-' (at most 64 characters)."
	case errors.Is(err, ErrNoUsers):
		return "Name at least one user to create the event for."

	case errors.Is(err, authflow.ErrMissingState):
		return "The authorization callback carried no state. Start the authorization again from the beginning."
	case errors.Is(err, authflow.ErrStateMismatch):
		return "This authorization link is stale or belongs to another user. Start the authorization again."
	case errors.Is(err, authflow.ErrConsentDenied):
		return "Calendar access was declined at Google. Start the authorization again and allow access to continue."
	case errors.Is(err, authflow.ErrExchange):
		return "Google did not accept the authorization code. Start the authorization again."

	case errors.Is(err, ErrExtractionUnavailable):
		return "Sentence extraction is not configured. Set OPENAI_API_KEY (or OPENAI_BASE_URL) and restart, or enter the event fields directly."
	case errors.Is(err, nlp.ErrEmptySentence):
		return "Describe the event in a sentence, for example \"lunch with Alice tomorrow 12-1pm\"."
	case errors.Is(err, nlp.ErrExtractionService):
		return fmt.Sprintf("The text-understanding service is unavailable (%v). Try again later or enter the event fields directly.",
			strings.TrimPrefix(err.Error(), nlp.ErrExtractionService.Error()+": "))
	case errors.Is(err, nlp.ErrMalformedExtraction):
		return "The sentence could not be understood as an event. Rephrase it with a date and a time."

	case errors.Is(err, event.ErrIncompleteDraft):
		return "The event needs both a start and an end time. Add them (e.g. \"3pm to 4pm\") and try again."
	case errors.Is(err, event.ErrInvalidDraft):
		return "The event times are invalid: use RFC 3339 with an offset (2025-09-02T13:00:00+09:00) and make the end later than the start."

	case errors.As(err, &provider):
		return fmt.Sprintf("Google Calendar rejected the request: %s.", provider.Message)
	case errors.Is(err, event.ErrProvider):
		return "Google Calendar rejected the request."
	}
	return err.Error()
}
