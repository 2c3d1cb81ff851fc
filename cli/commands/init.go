package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrate-go/cli/internal/config"
	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/migrate/history"
)

var providers = []string{"postgres", "mysql", "mssql", "sqlite"}

var exampleURLs = map[string]string{
	"postgres": "postgres://postgres@localhost:5432/app?sslmode=disable",
	"mysql":    "root@tcp(localhost:3306)/app",
	"mssql":    "sqlserver://sa@localhost:1433?database=app",
	"sqlite":   "file:app.db",
}

func newInitCommand(a *app) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .migrate.yaml config file",
		Long: `Create a config file. Values not given with --provider and
--database-url are asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := a.loader.Viper()

			exists, err := afero.Exists(config.AppFs, path)
			if err != nil {
				return err
			}
			if exists && !force {
				ok, err := ui.Confirm(fmt.Sprintf("%s exists. Overwrite?", path))
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintWarning("Kept %s", path)
					return nil
				}
			}

			provider := v.GetString("provider")
			if provider == "" {
				if provider, err = ui.Select("Database provider", providers, providers[0]); err != nil {
					return err
				}
			}
			url := v.GetString("database_url")
			if url == "" {
				if url, err = ui.Input("Connection string", exampleURLs[provider]); err != nil {
					return err
				}
			}

			cfg := &config.Config{
				Provider:     provider,
				DatabaseURL:  url,
				HistoryTable: v.GetString("history_table"),
				Timeout:      v.GetDuration("timeout"),
			}
			if cfg.HistoryTable == "" {
				cfg.HistoryTable = history.DefaultTable
			}
			if cfg.Timeout <= 0 {
				cfg.Timeout = migrate.DefaultTimeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(config.AppFs, path, cfg); err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s for %s", path, cfg.Provider)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", config.FileName+".yaml", "config file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file without asking")
	return cmd
}
