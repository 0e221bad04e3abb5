package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OldStager01/sdn-telemetry/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject  string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the generate-intent route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.API.JWTSecret == "" {
				return errors.New("api.jwt_secret is not set")
			}

			d := cfg.API.JWTDuration
			if duration > 0 {
				d = duration
			}

			token, err := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTIssuer, d).GenerateToken(subject)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually an operator name")
	cmd.Flags().DurationVar(&duration, "ttl", 0, "token lifetime, defaults to api.jwt_duration")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
