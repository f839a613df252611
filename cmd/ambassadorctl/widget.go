package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newWidgetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Manage embeddable widgets",
	}

	status := &cobra.Command{
		Use:   "status <widget-id>",
		Short: "Show the integration status of a widget",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, args []string) error {
			st, err := a.integration.Status(ctx, args[0])
			if err != nil {
				return err
			}
			lines := []string{
				fmt.Sprintf("verified:      %t", st.Verified),
				fmt.Sprintf("message:       %s", st.Message),
				fmt.Sprintf("loads:         %d on %d domain(s)", st.TotalLoads, st.UniqueDomains),
			}
			if st.LastVerifiedAt != nil {
				lines = append(lines, fmt.Sprintf("last verified: %s on %s", st.LastVerifiedAt.Format("2006-01-02 15:04:05"), st.LastVerifiedDomain))
			}
			return a.print(st, lines...)
		}),
	}

	var owner, config string
	create := &cobra.Command{
		Use:   "create",
		Short: "Generate a widget and print its embed code",
		Long: `create registers a widget. With --owner the university's existing widget
is updated instead; without it an anonymous preview widget is created.`,
		Args: cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, a *app, _ []string) error {
			g, err := a.widgets.Create(ctx, owner, json.RawMessage(config))
			if err != nil {
				return err
			}
			return a.print(map[string]any{
				"widgetId":   g.Widget.ID,
				"iframeCode": g.EmbedCode,
				"previewUrl": g.PreviewURL,
			}, "widget "+g.Widget.ID, g.PreviewURL, "", g.EmbedCode)
		}),
	}
	create.Flags().StringVar(&owner, "owner", "", "University id owning the widget")
	create.Flags().StringVar(&config, "config", "{}", "Display configuration as a JSON object")

	cmd.AddCommand(status, create)
	return cmd
}
