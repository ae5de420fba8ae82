package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paycalc/internal/client"
	"paycalc/internal/reports"
)

func (a *app) submitCommand() *cobra.Command {
	var (
		input           string
		serverURL       string
		token           string
		idempotencyKey  string
		continueOnError bool
		timeout         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a batch to a running paycalc API and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := os.ReadFile(input)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return exitf(ExitInvalidInvocation, "input file %s not found", input)
				}
				return exitf(ExitInternalError, "read input: %w", err)
			}

			c := client.New(serverURL, token, timeout)
			result, err := c.Compute(cmd.Context(), batch, continueOnError, idempotencyKey)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && (apiErr.RecordRejected() || apiErr.Status == 400) {
					return &ExitError{Code: ExitRecordFailure, Err: err}
				}
				return &ExitError{Code: ExitInternalError, Err: err}
			}
			a.logger.Debug("batch submitted",
				zap.String("server", serverURL),
				zap.Int("computed", len(result.Results)),
				zap.Int("failed", len(result.Failures)),
			)

			out := cmd.OutOrStdout()
			if err := reports.WriteTable(out, result.Results); err != nil {
				return exitf(ExitInternalError, "write table: %w", err)
			}
			if err := reports.WriteFailures(out, result.RecordErrors()); err != nil {
				return exitf(ExitInternalError, "write failures: %w", err)
			}
			if len(result.Failures) > 0 {
				return exitf(ExitRecordFailure, "%d records rejected", len(result.Failures))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "employees.json", "employee batch (JSON array)")
	flags.StringVar(&serverURL, "server", "http://localhost:8080", "paycalc API base URL")
	flags.StringVar(&token, "token", os.Getenv("PAYCALC_TOKEN"), "bearer token")
	flags.StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for safe retries")
	flags.BoolVar(&continueOnError, "continue-on-error", false, "ask the API to report rejected records instead of failing the batch")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout")
	return cmd
}
