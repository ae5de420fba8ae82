package cli

import (
	"github.com/spf13/cobra"

	"paycalc/internal/app/server"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the payroll HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			srv, err := server.New(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return &ExitError{Code: ExitConfigError, Err: err}
			}
			defer srv.Close()

			if err := srv.Run(cmd.Context()); err != nil {
				return &ExitError{Code: ExitInternalError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
