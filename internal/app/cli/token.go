package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"paycalc/internal/auth"
)

func (a *app) tokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		scopes  []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the payroll API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return &ExitError{Code: ExitConfigError, Err: errors.New("jwt_secret is not configured")}
			}
			if ttl <= 0 {
				return exitf(ExitInvalidInvocation, "--ttl must be positive")
			}
			token, err := auth.GenerateToken(a.cfg.JWTSecret, subject, scopes, ttl)
			if err != nil {
				return &ExitError{Code: ExitInvalidInvocation, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (client name)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeCompute, auth.ScopeRead}, "granted scopes")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
