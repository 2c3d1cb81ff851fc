package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/migrate-go/cli/internal/ui"
	"github.com/satishbabariya/migrate-go/migrate"
)

// progressListener prints one line per migration step
type progressListener struct {
	migrate.NopListener
	total   int
	step    int
	showSQL bool
}

func (p *progressListener) BeforeMigration(_ context.Context, e migrate.MigrationEvent) bool {
	p.step++
	dir := e.Direction.String()
	ui.PrintStep(p.step, p.total, fmt.Sprintf("%s %d %s", ui.DirectionColor(dir).Sprint(dir), e.Version, e.Name))
	return true
}

func (p *progressListener) AfterMigration(_ context.Context, e migrate.MigrationEvent) {
	if e.Err != nil {
		ui.PrintError("%d %s failed after %s: %v", e.Version, e.Direction, e.Duration.Round(time.Millisecond), e.Err)
		return
	}
	ui.PrintSuccess("%d %s (%s)", e.Version, e.Direction, e.Duration.Round(time.Millisecond))
}

func (p *progressListener) AfterSQL(_ context.Context, e migrate.SQLEvent) {
	if p.showSQL {
		ui.PrintSQL(e.SQL)
	}
}

// confirmListener asks before every migration statement. Declining
// cancels the run.
type confirmListener struct {
	migrate.NopListener
}

func (confirmListener) BeforeSQL(_ context.Context, e migrate.SQLEvent) bool {
	ok, err := ui.Confirm(fmt.Sprintf("Execute statement of %d %s?\n%s\n", e.Version, e.Direction, e.SQL))
	return err == nil && ok
}
