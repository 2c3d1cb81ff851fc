package history

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate/executor"
	"github.com/satishbabariya/migrate-go/migrate/schema"
	"github.com/satishbabariya/migrate-go/migrate/sqlgen"
)

// DefaultTable is the name of the history table
const DefaultTable = "MigrationHistory"

// datePrecision keeps milliseconds so records written in the same second
// still sort in the order they were applied.
const datePrecision = 3

// Columns names the columns of the history table
type Columns struct {
	Date      string
	Version   string
	Direction string
}

// DefaultColumns returns the standard column names
func DefaultColumns() Columns {
	return Columns{Date: "Date", Version: "Version", Direction: "Direction"}
}

// Option configures a SQLRepository
type Option func(*SQLRepository)

// WithTable sets the history table name
func WithTable(name string) Option {
	return func(r *SQLRepository) {
		if name != "" {
			r.table = name
		}
	}
}

// WithColumns overrides the history column names. Empty names keep their
// defaults.
func WithColumns(c Columns) Option {
	return func(r *SQLRepository) {
		if c.Date != "" {
			r.columns.Date = c.Date
		}
		if c.Version != "" {
			r.columns.Version = c.Version
		}
		if c.Direction != "" {
			r.columns.Direction = c.Direction
		}
	}
}

// SQLRepository stores history in a table of the migrated database. Its
// DDL and inserts are rendered by the SQL generator and sent through the
// context's processor as engine statements.
type SQLRepository struct {
	dialect sqlgen.Dialect
	table   string
	columns Columns
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a repository for dialect
func NewSQLRepository(dialect sqlgen.Dialect, opts ...Option) *SQLRepository {
	r := &SQLRepository{
		dialect: dialect,
		table:   DefaultTable,
		columns: DefaultColumns(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the history table name
func (r *SQLRepository) Table() string {
	return r.table
}

// RetrieveHistory reads every item. A missing table yields no items.
func (r *SQLRepository) RetrieveHistory(ctx context.Context, ec *executor.Context) ([]Item, error) {
	rows, err := ec.DB().QueryContext(ctx, r.selectSQL())
	if err != nil {
		if executor.IsUndefinedTable(err) {
			debug.Debug("History table not found", "table", r.table)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var date, version, direction any
		if err := rows.Scan(&date, &version, &direction); err != nil {
			return nil, fmt.Errorf("failed to scan migration history: %w", err)
		}
		item, err := toItem(date, version, direction)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration history: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddItem inserts item
func (r *SQLRepository) AddItem(ctx context.Context, ec *executor.Context, item Item) error {
	db := schema.NewDatabase(r.dialect)
	db.Table(r.table).Insert(schema.NewRow(
		r.columns.Date, item.Date.UTC(),
		r.columns.Version, item.Version,
		r.columns.Direction, int(item.Direction),
	))
	return r.run(ctx, ec, db)
}

// EnsureSchemaExists creates the history table. An "already exists" error
// from the driver is ignored; any other error is returned.
func (r *SQLRepository) EnsureSchemaExists(ctx context.Context, ec *executor.Context) error {
	db := schema.NewDatabase(r.dialect)
	t := db.AddTable(r.table)
	t.AddColumn(r.columns.Date, schema.DateTime, datePrecision).NotNull()
	t.AddColumn(r.columns.Version, schema.BigInt).NotNull()
	t.AddColumn(r.columns.Direction, schema.TinyInt).NotNull()

	err := r.run(ctx, ec, db)
	if err != nil && executor.IsAlreadyExists(err) {
		debug.Debug("History table already exists", "table", r.table)
		return nil
	}
	return err
}

func (r *SQLRepository) run(ctx context.Context, ec *executor.Context, db *schema.Database) error {
	for cmd, err := range sqlgen.New(r.dialect).Commands(db) {
		if err != nil {
			return err
		}
		if err := ec.EngineStatement(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) selectSQL() string {
	q := r.dialect.Quote
	return fmt.Sprintf("SELECT %s, %s, %s FROM %s ORDER BY %s",
		q(r.columns.Date), q(r.columns.Version), q(r.columns.Direction), q(r.table), q(r.columns.Date))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toItem(date, version, direction any) (Item, error) {
	var item Item
	var err error
	if item.Date, err = toTime(date); err != nil {
		return item, err
	}
	if item.Version, err = toInt64(version); err != nil {
		return item, err
	}
	dir, err := toInt64(direction)
	if err != nil {
		return item, err
	}
	item.Direction = Direction(dir)
	return item, nil
}

func toTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}, fmt.Errorf("unsupported date value %T", v)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("unsupported integer value %T", v)
}
