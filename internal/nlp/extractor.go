package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/logging"
)

// Config holds the dependencies of an Extractor.
type Config struct {
	Completer Completer

	// JSONMode requests the service's JSON object response format.
	// Replies are scanned for the first JSON object either way.
	JSONMode bool

	// Location renders the reference date. Defaults to DefaultTimeZone.
	Location *time.Location

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Extractor turns sentences into event drafts.
type Extractor struct {
	completer Completer
	jsonMode  bool
	location  *time.Location
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("completer cannot be nil")
	}

	loc := cfg.Location
	if loc == nil {
		var err error
		loc, err = time.LoadLocation(DefaultTimeZone)
		if err != nil {
			return nil, fmt.Errorf("failed to load time zone %s: %w", DefaultTimeZone, err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		completer: cfg.Completer,
		jsonMode:  cfg.JSONMode,
		location:  loc,
		logger:    logger.With(logging.Service("nlp")),
		metrics:   cfg.Metrics,
	}, nil
}

// Location returns the zone reference dates are rendered in.
func (e *Extractor) Location() *time.Location {
	return e.location
}

// Extract asks the model to turn text into a Draft, resolving relative dates
// against ref. Service failures wrap ErrExtractionService; unparseable
// replies return a *MalformedExtractionError. Nothing is retried.
func (e *Extractor) Extract(ctx context.Context, text string, ref time.Time) (event.Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return event.Draft{}, ErrEmptySentence
	}

	model := e.completer.Model()
	ctx, span := instrumentation.StartSpan(ctx, "nlp.extract",
		instrumentation.NewSpanAttributeBuilder().WithModel(model).Build()...)
	defer span.End()

	start := time.Now()
	reply, err := e.completer.Complete(ctx, Request{
		Instruction: Instruction(ref.In(e.location)),
		Sentence:    text,
		JSONMode:    e.jsonMode,
	})
	if err != nil {
		e.metrics.RecordExtraction(ctx, model, instrumentation.ExtractionResultService, time.Since(start))
		instrumentation.SetSpanError(span, err)
		e.logger.Warn("extraction service call failed", slog.String("model", model), logging.Err(err))
		return event.Draft{}, fmt.Errorf("%w: %w", ErrExtractionService, err)
	}

	draft, err := ParseReply(reply)
	if err != nil {
		e.metrics.RecordExtraction(ctx, model, instrumentation.ExtractionResultMalformed, time.Since(start))
		instrumentation.SetSpanError(span, err)
		var mee *MalformedExtractionError
		if errors.As(err, &mee) {
			e.logger.Warn("extraction reply malformed", slog.String("reason", mee.Reason), slog.String("preview", mee.Preview))
		}
		return event.Draft{}, err
	}

	e.metrics.RecordExtraction(ctx, model, instrumentation.ExtractionResultSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)
	e.logger.Debug("sentence extracted",
		slog.Bool("complete", draft.Complete()),
		slog.Int("attendee_count", len(draft.Attendees)),
	)
	return draft, nil
}
