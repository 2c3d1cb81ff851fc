package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/config"
	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/cli/internal/watch"
	"github.com/satishbabariya/migrate-go/migrate"
	"github.com/satishbabariya/migrate-go/migrate/planner"
)

type statusEntry struct {
	Version int64  `json:"version" yaml:"version"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	State   string `json:"state" yaml:"state"`
	Created string `json:"created,omitempty" yaml:"created,omitempty"`
}

func newStatusCommand(a *app) *cobra.Command {
	var watchFiles bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Long: `List registered migrations and versions found only in the history.
With --watch the list is printed again whenever the SQLite database file or
the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			cfg, err := a.config()
			if err != nil {
				return err
			}
			s, err := a.open(ctx, cfg)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(s))

			render := func() error {
				statuses, err := s.engine.Status(ctx)
				if err != nil {
					return err
				}
				return a.printStatus(statuses)
			}
			if !watchFiles {
				return render()
			}

			var files []string
			if path := config.SQLitePath(cfg.DatabaseURL); cfg.Provider == "sqlite" && path != "" {
				files = append(files, path)
			}
			if used := a.loader.Viper().ConfigFileUsed(); used != "" {
				files = append(files, used)
			}
			if len(files) == 0 {
				return errors.New("--watch needs a SQLite database file or a config file")
			}
			w, err := watch.NewWatcher(files, render)
			if err != nil {
				return err
			}
			ui.PrintInfo("Watching %s", strings.Join(files, ", "))
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "print again when the database or config file changes")
	return cmd
}

func (a *app) printStatus(statuses []planner.VersionStatus) error {
	entries := make([]statusEntry, len(statuses))
	for i, st := range statuses {
		entries[i] = statusEntry{Version: st.Version, Name: a.name(st.Version), State: string(st.State)}
		if t, ok := migrate.VersionTime(st.Version); ok {
			entries[i].Created = t.Format("2006-01-02 15:04:05")
		}
	}
	if ok, err := writeData(ui.Out(), a.output, entries); ok {
		return err
	}
	if len(entries) == 0 {
		ui.PrintInfo("No migrations registered")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{fmt.Sprint(e.Version), e.Name, e.Created, ui.StateColor(e.State).Sprint(e.State)}
	}
	return ui.PrintTable([]string{"Version", "Name", "Created", "State"}, rows)
}
