package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextweekend/nextweekend/pkg/auth"
	"github.com/nextweekend/nextweekend/pkg/config"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

// newTokenCmd issues access tokens for local testing against the API.
func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := config.Load[baseConfig]()
			if err != nil {
				return err
			}
			if base.Env == logger.EnvProduction || base.Env == "prod" {
				return errors.New("token: refusing to issue tokens in production")
			}
			authCfg, err := config.Load[auth.Config]()
			if err != nil {
				return err
			}
			token, err := auth.Sign(authCfg.JWTSecret, auth.Identity{UserID: userID, Email: email}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "profile id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
