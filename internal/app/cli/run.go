package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paycalc/internal/domain/payroll"
	"paycalc/internal/reports"
)

type runOptions struct {
	input           string
	output          string
	continueOnError bool
	workers         int
	register        string
	payslips        string
	period          string
	quiet           bool
}

func (a *app) runCommand() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute payroll for a JSON batch and write the report",
		Long: `Reads a JSON array of employee records, computes each employee's payroll and
writes the JSON report. By default the first invalid record aborts the run and
no report is written; --continue-on-error reports the valid records and lists
the rejected ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("continue-on-error") {
				a.cfg.ContinueOnError = opts.continueOnError
			}
			if cmd.Flags().Changed("workers") {
				if opts.workers < 1 {
					return exitf(ExitInvalidInvocation, "--workers must be at least 1, got %d", opts.workers)
				}
				a.cfg.Workers = opts.workers
			}
			return a.runBatch(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "employees.json", "employee batch (JSON array)")
	flags.StringVarP(&opts.output, "output", "o", "payroll_report.json", "JSON report path")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "report valid records and list rejected ones instead of aborting")
	flags.IntVar(&opts.workers, "workers", 1, "records computed in parallel")
	flags.StringVar(&opts.register, "register", "", "also write the payroll register CSV to this path")
	flags.StringVar(&opts.payslips, "payslips", "", "also write one PDF payslip per employee into this directory")
	flags.StringVar(&opts.period, "period", time.Now().Format("January 2006"), "pay period label printed on payslips")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the console table")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, opts runOptions) error {
	if a.cfg.Workers < 1 {
		return exitf(ExitConfigError, "workers must be at least 1, got %d", a.cfg.Workers)
	}
	schedule := a.cfg.TaxSchedule()
	if err := schedule.Validate(); err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("tax: %w", err)}
	}

	data, err := os.ReadFile(opts.input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitf(ExitInvalidInvocation, "input file %s not found", opts.input)
		}
		return exitf(ExitInternalError, "read input: %w", err)
	}
	records, err := payroll.DecodeBatch(data)
	if err != nil {
		return &ExitError{Code: ExitRecordFailure, Err: fmt.Errorf("%s: %w", opts.input, err)}
	}

	processor := payroll.NewProcessor(payroll.NewCalculator(schedule), a.cfg.Policy(), a.cfg.Workers,
		a.logger.With(zap.String("input", opts.input)))
	report, err := processor.Run(cmd.Context(), records)
	if err != nil {
		if _, ok := payroll.FailedRecord(err); ok {
			return &ExitError{Code: ExitRecordFailure, Err: err}
		}
		return &ExitError{Code: ExitInternalError, Err: err}
	}

	if err := reports.SaveJSON(opts.output, report.Results); err != nil {
		return exitf(ExitInternalError, "write report: %w", err)
	}
	if opts.register != "" {
		if err := reports.SaveRegister(opts.register, report.Results); err != nil {
			return exitf(ExitInternalError, "write register: %w", err)
		}
	}
	if opts.payslips != "" {
		paths, err := reports.WritePayslips(opts.payslips, opts.period, report.Results)
		if err != nil {
			return exitf(ExitInternalError, "write payslips: %w", err)
		}
		a.logger.Debug("payslips written", zap.Int("count", len(paths)), zap.String("dir", opts.payslips))
	}

	out := cmd.OutOrStdout()
	if !opts.quiet {
		if err := reports.WriteTable(out, report.Results); err != nil {
			return exitf(ExitInternalError, "write table: %w", err)
		}
	}
	fmt.Fprintf(out, "\nSaved: %s\n\n", opts.output)
	if err := reports.WriteFailures(out, report.Failures); err != nil {
		return exitf(ExitInternalError, "write failures: %w", err)
	}

	if len(report.Failures) > 0 {
		return exitf(ExitRecordFailure, "%d of %d records rejected", len(report.Failures), len(records))
	}
	return nil
}
