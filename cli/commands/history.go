package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/ui"
)

type historyEntry struct {
	Date      string `json:"date" yaml:"date"`
	Version   int64  `json:"version" yaml:"version"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Direction string `json:"direction" yaml:"direction"`
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the recorded migration history, oldest first",
		Args:  cobra.NoArgs,
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

			items, err := s.engine.History(ctx)
			if err != nil {
				return err
			}
			entries := make([]historyEntry, len(items))
			for i, item := range items {
				entries[i] = historyEntry{
					Date:      item.Date.UTC().Format("2006-01-02 15:04:05"),
					Version:   item.Version,
					Name:      a.name(item.Version),
					Direction: item.Direction.String(),
				}
			}
			if ok, err := writeData(ui.Out(), a.output, entries); ok {
				return err
			}
			if len(entries) == 0 {
				ui.PrintInfo("No migrations have run")
				return nil
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Date, fmt.Sprint(e.Version), e.Name, ui.DirectionColor(e.Direction).Sprint(e.Direction)}
			}
			return ui.PrintTable([]string{"Date (UTC)", "Version", "Name", "Direction"}, rows)
		},
	}
}
