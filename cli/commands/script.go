package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/config"
	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/migrate/executor"
	"github.com/satishbabariya/migrate-go/migrate/history"
)

func newScriptCommand(a *app) *cobra.Command {
	var (
		out         string
		withHistory bool
	)
	cmd := &cobra.Command{
		Use:   "script [target]",
		Short: "Write the SQL of a migration run to a file instead of executing it",
		Long: `Write the statements that migrate would execute to reach target. The
history is read from the database but nothing is changed. With
--with-history the script also creates and updates the history table.

` + targetHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			cfg, err := a.config()
			if err != nil {
				return err
			}
			to, err := a.resolveTarget(args)
			if err != nil {
				return err
			}
			dialect, err := cfg.Dialect()
			if err != nil {
				return err
			}

			var w io.Writer = ui.Out()
			if out != "" {
				f, ferr := config.AppFs.Create(out)
				if ferr != nil {
					return ferr
				}
				defer multierr.AppendInvoke(&err, multierr.Close(f))
				w = f
			}

			proc := executor.NewScriptProcessor(w, dialect, withHistory)
			if err := proc.Comment("migrate-go script for %s, target version %d", dialect.Name(), to); err != nil {
				return err
			}
			var repo history.Repository = history.NewSQLRepository(dialect, history.WithTable(cfg.HistoryTable))
			if !withHistory {
				repo = history.ReadOnly(repo)
			}

			// the script processor already keeps statements away from the database
			cfg.WhatIf = false
			s, err := a.open(ctx, cfg, migrate.WithProcessor(proc), migrate.WithHistory(repo))
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(s))

			done, err := s.engine.MigrateTo(ctx, to)
			if err != nil {
				return err
			}
			if out != "" {
				ui.PrintSuccess("Wrote %d statement(s) for %d step(s) to %s", proc.Count(), len(done), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "script file (default stdout)")
	cmd.Flags().BoolVar(&withHistory, "with-history", false, "include history table statements")
	return cmd
}
