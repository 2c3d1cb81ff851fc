package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/migrate/planner"
)

type planEntry struct {
	Version   int64  `json:"version" yaml:"version"`
	Name      string `json:"name" yaml:"name"`
	Direction string `json:"direction" yaml:"direction"`
}

func newPlanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [target]",
		Short: "Show the steps migrate would run, without running them",
		Long:  "Show the migrations that would be applied or reverted to reach target.\n\n" + targetHelp,
		Args:  cobra.MaximumNArgs(1),
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
			s, err := a.open(ctx, cfg)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(s))

			spinner := ui.StartSpinner("Reading migration history")
			plan, err := s.engine.Plan(ctx, to)
			spinner.Stop()
			if err != nil {
				return err
			}
			entries := make([]planEntry, len(plan))
			for i, step := range plan {
				entries[i] = planEntry{Version: step.Version, Name: a.name(step.Version), Direction: step.Direction.String()}
			}
			if ok, err := writeData(ui.Out(), a.output, entries); ok {
				return err
			}

			if plan.Empty() {
				ui.PrintSuccess("Database is up to date")
				return nil
			}
			return ui.PrintMarkdown(planMarkdown(to, plan, entries))
		},
	}
}

func planMarkdown(to int64, plan planner.Plan, entries []planEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Plan to version %d\n\n", to)
	fmt.Fprintf(&b, "%d step(s): `%s`\n\n", len(plan), plan)
	b.WriteString("| # | Version | Name | Direction |\n|---|---|---|---|\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "| %d | %d | %s | %s |\n", i+1, e.Version, e.Name, e.Direction)
	}
	return b.String()
}
