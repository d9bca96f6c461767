package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/token"
	"github.com/spf13/cobra"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Auth.AdminSecret == "" {
				return errors.New("AUTH_ADMIN_SECRET is not set, admin endpoints do not require a token")
			}

			issuer := token.NewJWTIssuer(token.JwtConfig{
				Secret: token.NewSecretString(a.cfg.Auth.AdminSecret),
				TTL:    ttl,
			})

			tk, err := issuer.Issue(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tk)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")

	return cmd
}
