// Package commands implements the migrate-go command line. Programs embed
// it with their own registry:
//
//	func main() {
//		if err := commands.Execute(migrations.Registry()); err != nil {
//			os.Exit(1)
//		}
//	}
package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrate-go/cli/internal/config"
	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/cli/internal/version"
	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate"
)

// Execute runs the CLI with os.Args
func Execute(reg *migrate.Registry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand(reg)
	if err := cmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

// NewRootCommand builds the command tree for reg
func NewRootCommand(reg *migrate.Registry) *cobra.Command {
	if reg == nil {
		reg = migrate.NewRegistry()
	}
	a := &app{registry: reg, loader: config.NewLoader(config.AppFs)}

	root := &cobra.Command{
		Use:           "migrate-go",
		Short:         "Apply and revert versioned schema migrations",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default .migrate.yaml)")
	flags.String("provider", "", "database provider: mssql, mysql, postgres or sqlite")
	flags.String("database-url", "", "connection string (default $DATABASE_URL)")
	flags.String("history-table", "", "name of the migration history table")
	flags.Duration("timeout", 0, "transaction timeout per migration")
	flags.Bool("what-if", false, "print statements instead of executing them")
	flags.Bool("silent", false, "only print errors and requested data")
	flags.Bool("log-sql", false, "log every driver call")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table, yaml or json")

	v := a.loader.Viper()
	for key, flag := range map[string]string{
		"provider":      "provider",
		"database_url":  "database-url",
		"history_table": "history-table",
		"timeout":       "timeout",
		"what_if":       "what-if",
		"silent":        "silent",
		"log_sql":       "log-sql",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		debug.SetOutput(cmd.ErrOrStderr(), a.debug)
		ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err := validateFormat(a.output); err != nil {
			return err
		}
		// structured output must not be mixed with progress messages
		ui.SetSilent(v.GetBool("silent") || a.output != formatTable)
		return nil
	}

	root.AddCommand(
		newInitCommand(a),
		newMigrateCommand(a),
		newPlanCommand(a),
		newStatusCommand(a),
		newScriptCommand(a),
		newHistoryCommand(a),
		newVersionCommand(a),
	)
	return root
}
