package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/telemetry"
)

const targetHelp = `A target is one of:
  (empty)               the latest migration
  latest, latest~N      the latest migration, or N migrations before it
  0, zero               before the first migration (revert everything)
  20240102150405        a migration version
  2024-01-02 15:04:05   the newest migration at or before that time
  2024-01-02            the newest migration on or before that day`

func newMigrateCommand(a *app) *cobra.Command {
	var confirm, showSQL bool
	cmd := &cobra.Command{
		Use:   "migrate [target]",
		Short: "Apply or revert migrations until the database is at target",
		Long: `Apply pending migrations up to target and revert applied migrations
newer than target. Every migration runs in its own transaction.

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

			progress := &progressListener{showSQL: showSQL}
			collector := telemetry.New(cfg.Provider, telemetry.WithEndpoint(telemetry.EndpointFromEnv()))
			opts := []migrate.Option{
				migrate.WithListener(progress),
				migrate.WithListener(collector),
			}
			if confirm {
				opts = append(opts, migrate.WithListener(confirmListener{}))
			}

			s, err := a.open(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(s))

			plan, err := s.engine.Plan(ctx, to)
			if err != nil {
				return err
			}
			if plan.Empty() {
				ui.PrintSuccess("Database is up to date")
				_, err = writeData(ui.Out(), a.output, collector.Summary())
				return err
			}

			title := "Migrating"
			if cfg.WhatIf {
				title = "Migrating (what-if)"
			}
			ui.PrintHeader(title, fmt.Sprintf("%s, %d step(s) to version %d", cfg.Provider, len(plan), to))
			progress.total = len(plan)

			done, runErr := s.engine.MigrateTo(ctx, to)
			if ferr := collector.Flush(ctx); ferr != nil {
				debug.Warn("Failed to flush telemetry", "error", ferr)
			}
			summary := collector.Summary()
			if _, err := writeData(ui.Out(), a.output, summary); err != nil {
				return multierr.Append(runErr, err)
			}

			if runErr != nil {
				if errors.Is(runErr, migrate.ErrCanceled) {
					ui.PrintWarning("Canceled after %d of %d step(s)", len(done), len(plan))
				}
				return runErr
			}
			ui.PrintSuccess("Done: %d step(s), %d statement(s) in %s",
				len(done), summary.Statements, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "ask before executing each statement")
	cmd.Flags().BoolVar(&showSQL, "show-sql", false, "print statements as they run")
	return cmd
}
