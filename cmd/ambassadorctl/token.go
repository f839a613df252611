package main

import (
	"errors"
	"time"

	"ambassador-tracker/internal/service"

	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var name, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <university-id>",
		Short: "Issue an operator bearer token for a university",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := loadBootstrap(opts.conf)
			if err != nil {
				return err
			}
			if bc.Auth == nil || bc.Auth.JwtSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			token, err := service.SignUniversityToken(bc.Auth.JwtSecret, args[0], name, email, ttl)
			if err != nil {
				return err
			}
			a := &app{out: cmd.OutOrStdout(), json: opts.output == "json"}
			return a.print(map[string]string{"token": token}, token)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "University display name")
	cmd.Flags().StringVar(&email, "email", "", "University reply-to email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
