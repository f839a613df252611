package main

import (
	"context"

	"ambassador-tracker/internal/data"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ []string) error {
			if err := data.Migrate(ctx, a.data.Driver()); err != nil {
				return err
			}
			return a.print(map[string]any{"migrated": true, "driver": a.data.Driver().Dialect()},
				"schema is up to date ("+a.data.Driver().Dialect()+")")
		}),
	}
}
