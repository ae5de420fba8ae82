package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paycalc/internal/platform/config"
	"paycalc/internal/platform/logging"
)

type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	verbose    bool

	cfg       config.Config
	logger    *zap.Logger
	newLogger func(level string, verbose bool) (*zap.Logger, error)
}

// Execute runs the paycalc command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, newLogger: logging.New}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(a.stderr, "error:", err)
	}
	return ExitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "paycalc",
		Short: "Batch payroll calculator",
		Long: `paycalc computes gross pay, deductions, progressive income tax and net
pay for a batch of employee records.

Run a batch from a JSON file with "paycalc run", or start the HTTP API with
"paycalc serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return &ExitError{Code: ExitConfigError, Err: err}
			}
			logger, err := a.newLogger(cfg.LogLevel, a.verbose)
			if err != nil {
				return &ExitError{Code: ExitConfigError, Err: err}
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.runCommand(),
		a.taxCommand(),
		a.serveCommand(),
		a.submitCommand(),
		a.tokenCommand(),
	)
	return root
}
