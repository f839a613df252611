package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClicksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clicks",
		Short: "Read chat click analytics",
	}

	count := &cobra.Command{
		Use:   "count <widget-id>",
		Short: "Count the chat clicks of a widget",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, args []string) error {
			n, err := a.clicks.GetClickCount(ctx, args[0])
			if err != nil {
				return err
			}
			return a.print(map[string]any{"widgetId": args[0], "count": n}, fmt.Sprintf("%d", n))
		}),
	}

	countries := &cobra.Command{
		Use:   "countries <widget-id>",
		Short: "Break down the chat clicks of a widget by country",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, args []string) error {
			rows, err := a.clicks.GetClicksByCountry(ctx, args[0])
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(rows))
			for _, r := range rows {
				lines = append(lines, fmt.Sprintf("%-24s %d", r.Country, r.Count))
			}
			return a.print(rows, lines...)
		}),
	}

	cmd.AddCommand(count, countries)
	return cmd
}
