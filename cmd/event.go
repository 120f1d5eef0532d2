package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/scheduler"
	"github.com/teemow/quickcal/internal/tools/batch"
)

// eventOutput reports a dispatched event per user.
type eventOutput struct {
	Draft      event.Draft `json:"draft"`
	Unresolved []string    `json:"unresolved_attendees,omitempty"`
	batch.BatchResult
}

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Create events for authorized users",
	}

	cmd.AddCommand(newEventCreateCmd())
	cmd.AddCommand(newEventParseCmd())
	cmd.AddCommand(newEventQuickCmd())

	return cmd
}

func newEventCreateCmd() *cobra.Command {
	var (
		opts      appOptions
		users     string
		draft     event.Draft
		attendees string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event from structured fields",
		Example: `  quickcal event create --users alice,bob --summary "Design review" \
    --start 2025-09-03T15:00:00+09:00 --end 2025-09-03T16:00:00+09:00 \
    --attendees "Carol,dave@example.com"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, &opts, func(ctx context.Context, a *app) error {
				draft.Attendees = parseCommaSeparatedList(attendees)
				report, err := a.scheduler.Schedule(ctx, parseCommaSeparatedList(users), draft)
				if err != nil {
					return err
				}
				return printReport(cmd, report)
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&users, "users", "", "Comma-separated users to create the event for")
	cmd.Flags().StringVar(&draft.Summary, "summary", "", "Event title (default \""+event.DefaultSummary+"\")")
	cmd.Flags().StringVar(&draft.Start, "start", "", "Start time, RFC 3339 with offset")
	cmd.Flags().StringVar(&draft.End, "end", "", "End time, RFC 3339 with offset")
	cmd.Flags().StringVar(&attendees, "attendees", "", "Comma-separated attendee addresses or directory names")
	_ = cmd.MarkFlagRequired("users")

	return cmd
}

func newEventParseCmd() *cobra.Command {
	var opts appOptions

	cmd := &cobra.Command{
		Use:   "parse <sentence>",
		Short: "Turn a sentence into an event draft without creating it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, &opts, func(ctx context.Context, a *app) error {
				preview, err := a.scheduler.Preview(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), preview)
			})
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func newEventQuickCmd() *cobra.Command {
	var (
		opts  appOptions
		users string
	)

	cmd := &cobra.Command{
		Use:     "quick <sentence>",
		Short:   "Turn a sentence into an event and create it",
		Example: `  quickcal event quick --users alice "lunch with Bob tomorrow 12-1pm"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, &opts, func(ctx context.Context, a *app) error {
				report, err := a.scheduler.ScheduleText(ctx, parseCommaSeparatedList(users), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printReport(cmd, report)
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&users, "users", "", "Comma-separated users to create the event for")
	_ = cmd.MarkFlagRequired("users")

	return cmd
}

// printReport prints the per-user results and fails when any user failed.
func printReport(cmd *cobra.Command, report *scheduler.Report) error {
	out := eventOutput{
		Draft:       report.Draft,
		Unresolved:  report.Unresolved,
		BatchResult: batch.Summarize(batch.FromOutcomes(report.Outcomes, scheduler.Explain)),
	}
	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if out.Failed > 0 {
		return fmt.Errorf("event not created for %d of %d users", out.Failed, out.Total)
	}
	return nil
}
