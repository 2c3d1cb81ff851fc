package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate/executor"
	"github.com/satishbabariya/migrate-go/migrate/history"
	"github.com/satishbabariya/migrate-go/migrate/planner"
	"github.com/satishbabariya/migrate-go/migrate/schema"
	"github.com/satishbabariya/migrate-go/migrate/sqlgen"
)

// Engine runs the migrations of a registry against a database
type Engine struct {
	db        *sql.DB
	dialect   sqlgen.Dialect
	registry  *Registry
	history   history.Repository
	processor executor.Processor
	listeners Listeners
	logger    *slog.Logger
	isolation sql.IsolationLevel
	timeout   time.Duration
	now       func() time.Time
	whatIf    bool
	whatIfOut io.Writer
}

// NewEngine creates an engine for db
func NewEngine(db *sql.DB, dialect sqlgen.Dialect, registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		db:        db,
		dialect:   dialect,
		registry:  registry,
		processor: executor.DatabaseProcessor{},
		logger:    debug.Logger(),
		isolation: sql.LevelSerializable,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.history == nil {
		e.history = history.NewSQLRepository(dialect)
	}
	if e.whatIf {
		e.processor = executor.NewWhatIfProcessor(e.processor, e.whatIfOut)
		e.history = history.ReadOnly(e.history)
	}
	return e
}

// Registry returns the migrations the engine runs
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Dialect returns the SQL dialect of the engine
func (e *Engine) Dialect() sqlgen.Dialect {
	return e.dialect
}

// Migrate brings the database to the latest registered version
func (e *Engine) Migrate(ctx context.Context) (planner.Plan, error) {
	return e.MigrateTo(ctx, e.registry.Latest())
}

// MigrateTo applies and reverts migrations until the database is at
// version. It stops at the first failure; the failed migration is rolled
// back and the remaining steps are not attempted. The returned plan holds
// the steps that were committed.
func (e *Engine) MigrateTo(ctx context.Context, version int64) (done planner.Plan, err error) {
	err = e.withConn(ctx, func(ec *executor.Context) error {
		if err := e.history.EnsureSchemaExists(ctx, ec); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
		hist, err := e.history.RetrieveHistory(ctx, ec)
		if err != nil {
			return fmt.Errorf("failed to retrieve history: %w", err)
		}

		plan := planner.BuildPlan(e.registry.All(), hist, version)
		e.logger.Info("Migration plan built", "target", version, "steps", len(plan))

		done = make(planner.Plan, 0, len(plan))
		for _, step := range plan {
			m, ok := e.registry.Get(step.Version)
			if !ok {
				return fmt.Errorf("%w: %d", ErrUnknownVersion, step.Version)
			}
			if err := e.apply(ctx, ec, m, step.Direction); err != nil {
				return err
			}
			done = append(done, step)
		}
		return nil
	})
	return done, err
}

// Plan returns the steps MigrateTo(version) would run, without changing
// anything.
func (e *Engine) Plan(ctx context.Context, version int64) (planner.Plan, error) {
	hist, err := e.History(ctx)
	if err != nil {
		return nil, err
	}
	return planner.BuildPlan(e.registry.All(), hist, version), nil
}

// Status reports the state of every registered or recorded version
func (e *Engine) Status(ctx context.Context) ([]planner.VersionStatus, error) {
	hist, err := e.History(ctx)
	if err != nil {
		return nil, err
	}
	return planner.Status(e.registry.All(), hist), nil
}

// History returns the recorded history
func (e *Engine) History(ctx context.Context) (items []history.Item, err error) {
	err = e.withConn(ctx, func(ec *executor.Context) error {
		items, err = e.history.RetrieveHistory(ctx, ec)
		if err != nil {
			return fmt.Errorf("failed to retrieve history: %w", err)
		}
		return nil
	})
	return items, err
}

// withConn runs fn on a single connection held for the whole call
func (e *Engine) withConn(ctx context.Context, fn func(ec *executor.Context) error) (err error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(conn))

	return fn(&executor.Context{Conn: conn, Dialect: e.dialect, Processor: e.processor})
}

// apply runs one migration in its own transaction
func (e *Engine) apply(ctx context.Context, ec *executor.Context, m *Migration, dir history.Direction) (err error) {
	log := e.logger.With("version", m.Version, "name", m.Name, "direction", dir)
	event := MigrationEvent{Version: m.Version, Name: m.Name, Direction: dir}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tx, err := ec.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: e.isolation})
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}
	ec.Tx = tx
	defer func() { ec.Tx = nil }()

	log.Info("Running migration")
	if err = e.run(ctx, ec, m, dir, event); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = multierr.Append(err, fmt.Errorf("failed to roll back migration %d: %w", m.Version, rbErr))
		}
		log.Error("Migration failed", "error", err)
		event.Duration, event.Err = time.Since(start), err
		e.listeners.AfterMigration(ctx, event)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		log.Error("Migration failed", "error", err)
		event.Duration, event.Err = time.Since(start), err
		e.listeners.AfterMigration(ctx, event)
		return err
	}
	log.Info("Migration completed", "duration", time.Since(start))
	return nil
}

// run executes Up or Down, flushes the model and records the history item.
// AfterMigration is fired before the transaction commits.
func (e *Engine) run(ctx context.Context, ec *executor.Context, m *Migration, dir history.Direction, event MigrationEvent) error {
	start := time.Now()
	if !e.listeners.BeforeMigration(ctx, event) {
		return fmt.Errorf("%w: migration %d %s", ErrCanceled, m.Version, dir)
	}

	gen := sqlgen.New(e.dialect)
	db := schema.NewDatabase(e.dialect)
	db.OnFlush(func(db *schema.Database) error {
		return e.flush(ctx, ec, gen, db, m.Version, dir)
	})

	fn := m.Up
	if dir == history.Down {
		fn = m.Down
	}
	if err := fn(db); err != nil {
		return fmt.Errorf("migration %d %s failed: %w", m.Version, dir, err)
	}
	if err := db.Flush(); err != nil {
		return fmt.Errorf("migration %d %s failed: %w", m.Version, dir, err)
	}

	item := history.Item{Version: m.Version, Direction: dir, Date: e.now().UTC()}
	if err := e.history.AddItem(ctx, ec, item); err != nil {
		return fmt.Errorf("failed to record migration %d %s: %w", m.Version, dir, err)
	}

	event.Duration = time.Since(start)
	e.listeners.AfterMigration(ctx, event)
	return nil
}

// flush drains the model through the processor, one statement at a time
func (e *Engine) flush(ctx context.Context, ec *executor.Context, gen *sqlgen.Generator, db *schema.Database, version int64, dir history.Direction) error {
	for cmd, err := range gen.Commands(db) {
		if err != nil {
			return err
		}
		event := SQLEvent{Version: version, Direction: dir, SQL: cmd}
		if !e.listeners.BeforeSQL(ctx, event) {
			return fmt.Errorf("%w: statement of migration %d %s", ErrCanceled, version, dir)
		}

		start := time.Now()
		err := ec.MigrationStatement(ctx, cmd)
		event.Duration, event.Err = time.Since(start), err
		e.listeners.AfterSQL(ctx, event)
		if err != nil {
			return err
		}
	}
	return nil
}
