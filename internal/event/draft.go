package event

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSummary is used when a draft has no summary.
const DefaultSummary = "Untitled event"

// Draft is a proposed event, as typed by a user or extracted from a sentence.
// Start and End are RFC 3339 timestamps with an explicit offset.
type Draft struct {
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Attendees []string `json:"attendees"`
}

// Complete reports whether both start and end are present.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.Start) != "" && strings.TrimSpace(d.End) != ""
}

// Times parses and validates the draft's time range.
//
// A missing start or end yields ErrIncompleteDraft. Unparseable times and
// ranges whose end is not after start yield ErrInvalidDraft.
func (d Draft) Times() (start, end time.Time, err error) {
	if !d.Complete() {
		return time.Time{}, time.Time{}, ErrIncompleteDraft
	}

	start, err = time.Parse(time.RFC3339, strings.TrimSpace(d.Start))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q is not an RFC 3339 time with offset", ErrInvalidDraft, d.Start)
	}
	end, err = time.Parse(time.RFC3339, strings.TrimSpace(d.End))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q is not an RFC 3339 time with offset", ErrInvalidDraft, d.End)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidDraft, d.End, d.Start)
	}
	return start, end, nil
}

// Validate checks the draft without returning the parsed times.
func (d Draft) Validate() error {
	_, _, err := d.Times()
	return err
}

// Title returns the summary, or DefaultSummary when it is blank.
func (d Draft) Title() string {
	if s := strings.TrimSpace(d.Summary); s != "" {
		return s
	}
	return DefaultSummary
}
