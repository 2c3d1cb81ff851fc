package migrate

import (
	"context"
	"time"

	"github.com/satishbabariya/migrate-go/migrate/history"
)

// MigrationEvent describes a migration run
type MigrationEvent struct {
	Version   int64
	Name      string
	Direction history.Direction
	// Duration and Err are set on AfterMigration
	Duration time.Duration
	Err      error
}

// SQLEvent describes one statement of a migration
type SQLEvent struct {
	Version   int64
	Direction history.Direction
	SQL       string
	// Duration and Err are set on AfterSQL
	Duration time.Duration
	Err      error
}

// Listener is notified around migrations and statements. Returning false
// from a Before method cancels the migration and the rest of the plan.
//
// AfterMigration is called on failure too, with Err set. The successful
// call happens inside the transaction, before it commits. When the commit
// fails AfterMigration is called a second time with the commit error.
type Listener interface {
	BeforeMigration(ctx context.Context, e MigrationEvent) bool
	AfterMigration(ctx context.Context, e MigrationEvent)
	BeforeSQL(ctx context.Context, e SQLEvent) bool
	AfterSQL(ctx context.Context, e SQLEvent)
}

// NopListener ignores every event. Embed it to implement part of Listener.
type NopListener struct{}

func (NopListener) BeforeMigration(context.Context, MigrationEvent) bool { return true }
func (NopListener) AfterMigration(context.Context, MigrationEvent)       {}
func (NopListener) BeforeSQL(context.Context, SQLEvent) bool             { return true }
func (NopListener) AfterSQL(context.Context, SQLEvent)                   {}

// Listeners fans events out in order. A Before method stops at the first
// listener that cancels.
type Listeners []Listener

var _ Listener = Listeners(nil)

func (ls Listeners) BeforeMigration(ctx context.Context, e MigrationEvent) bool {
	for _, l := range ls {
		if !l.BeforeMigration(ctx, e) {
			return false
		}
	}
	return true
}

func (ls Listeners) AfterMigration(ctx context.Context, e MigrationEvent) {
	for _, l := range ls {
		l.AfterMigration(ctx, e)
	}
}

func (ls Listeners) BeforeSQL(ctx context.Context, e SQLEvent) bool {
	for _, l := range ls {
		if !l.BeforeSQL(ctx, e) {
			return false
		}
	}
	return true
}

func (ls Listeners) AfterSQL(ctx context.Context, e SQLEvent) {
	for _, l := range ls {
		l.AfterSQL(ctx, e)
	}
}
