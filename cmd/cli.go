package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/instrumentation"
	"github.com/teemow/quickcal/internal/scheduler"
)

// withApp wires the scheduling stack for a one-shot command and runs fn.
// Pipeline errors are turned into their user-facing explanation.
func withApp(cmd *cobra.Command, opts *appOptions, fn func(ctx context.Context, a *app) error) error {
	opts.loadEnv(cmd)
	logger := newLogger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, opts, appDeps{
		logger: logger,
		audit:  instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.DefaultConfig().AuditLogging),
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := fn(ctx, a); err != nil {
		return errors.New(scheduler.Explain(err))
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
