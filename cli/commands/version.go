package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/cli/internal/version"
)

func newVersionCommand(a *app) *cobra.Command {
	var full, server bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			info := version.Get()
			if ok, err := writeData(ui.Out(), a.output, info); ok {
				return err
			}
			if full {
				fmt.Fprintln(ui.Out(), info.FullString())
			} else {
				fmt.Fprintln(ui.Out(), info.String())
			}
			if !server {
				return nil
			}

			cfg, err := a.config()
			if err != nil {
				return err
			}
			dsn, err := cfg.DSN()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DriverName(), dsn, nil)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(db))

			raw, err := serverVersion(cmd.Context(), db, cfg.Provider)
			if err != nil {
				return fmt.Errorf("failed to read %s server version: %w", cfg.Provider, err)
			}
			fmt.Fprintf(ui.Out(), "%s server %s\n", cfg.Provider, raw)
			return version.CheckServer(cfg.Provider, raw)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build details")
	cmd.Flags().BoolVar(&server, "server", false, "also check the configured database server version")
	return cmd
}
