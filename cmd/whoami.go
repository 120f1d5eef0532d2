package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/credstore"
)

type whoamiOutput struct {
	User       string `json:"user"`
	CalendarID string `json:"calendar_id"`
	Calendar   string `json:"calendar"`
	TimeZone   string `json:"time_zone,omitempty"`
}

func newWhoAmICmd() *cobra.Command {
	var (
		opts appOptions
		user string
	)

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the primary calendar an authorized user has connected",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, &opts, func(ctx context.Context, a *app) error {
				if err := credstore.ValidateUser(user); err != nil {
					return err
				}
				info, err := a.scheduler.WhoAmI(ctx, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), whoamiOutput{
					User:       user,
					CalendarID: info.ID,
					Calendar:   info.Summary,
					TimeZone:   info.TimeZone,
				})
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&user, "user", "u", "", "User identifier")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
