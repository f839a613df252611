package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	conf   string
	output string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ambassadorctl",
		Short: "Operate the ambassador tracker data store",
		Long: `ambassadorctl reads the same configuration as the server and works
directly against its database. Use it to migrate the schema, inspect
widgets and clicks, replay signups and issue operator tokens.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.conf, "conf", "configs", "config path, eg: --conf config.yaml")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newInvitationCmd(opts),
		newClicksCmd(opts),
		newWidgetCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}
