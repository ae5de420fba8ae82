package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"paycalc/internal/domain/payroll"
)

func (a *app) taxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tax <amount>...",
		Short: "Print the progressive tax for one or more gross amounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule := a.cfg.TaxSchedule()
			if err := schedule.Validate(); err != nil {
				return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("tax: %w", err)}
			}

			grosses := make([]float64, 0, len(args))
			for _, arg := range args {
				raw, _ := json.Marshal(arg)
				gross, err := payroll.SafeNumber(raw, "amount")
				if err != nil {
					return &ExitError{Code: ExitInvalidInvocation, Err: err}
				}
				grosses = append(grosses, gross)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%14s %12s\n", "Gross", "Tax")
			for _, gross := range grosses {
				fmt.Fprintf(out, "%14.2f %12.2f\n", gross, schedule.Tax(gross))
			}
			return nil
		},
	}
}
