package nlp

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionService is returned when the language model call fails.
	ErrExtractionService = errors.New("text-understanding service failed")

	// ErrMalformedExtraction is returned when the reply holds no parseable
	// JSON event object.
	ErrMalformedExtraction = errors.New("text-understanding reply is not a JSON event object")

	// ErrEmptySentence is returned for blank input.
	ErrEmptySentence = errors.New("sentence is empty")
)

// PreviewLength bounds the raw reply carried by MalformedExtractionError.
const PreviewLength = 200

// MalformedExtractionError carries a bounded preview of the unparseable reply.
type MalformedExtractionError struct {
	Reason  string
	Preview string
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("%s: %s (reply: %q)", ErrMalformedExtraction, e.Reason, e.Preview)
}

// Is makes errors.Is(err, ErrMalformedExtraction) match.
func (e *MalformedExtractionError) Is(target error) bool {
	return target == ErrMalformedExtraction
}
