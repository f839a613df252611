package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInvitationCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitation",
		Short: "Inspect and update ambassador invitations",
	}

	check := &cobra.Command{
		Use:   "check <email>",
		Short: "Show the latest invitation of an email address",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, args []string) error {
			res, err := a.invitations.CheckStatus(ctx, args[0])
			if err != nil {
				return err
			}
			if !res.WasInvited {
				return a.print(res, args[0]+" was never invited")
			}
			return a.print(res, fmt.Sprintf("%s: %s by %s", args[0], res.Status, res.UniversityName))
		}),
	}

	signup := &cobra.Command{
		Use:   "signup <email>",
		Short: "Apply an ambassador signup to the invitations of an email address",
		Long: `signup runs the same transition as a user.registered event from the
broker: accepted invitations become JOINED, otherwise pending ones become
ACCEPTED.`,
		Args: cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, args []string) error {
			out := a.invitations.HandleAmbassadorSignup(ctx, args[0])
			if out == nil || out.Count == 0 {
				return a.print(map[string]any{"updated": 0}, "no invitations updated")
			}
			return a.print(out, fmt.Sprintf("%d invitation(s) moved %s -> %s", out.Count, out.From, out.To))
		}),
	}

	cmd.AddCommand(check, signup)
	return cmd
}
