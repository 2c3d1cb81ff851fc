// Package sqllog traces database/sql calls to a slog.Logger.
package sqllog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sqldblogger "github.com/simukti/sqldb-logger"
)

// Logger adapts a slog.Logger to sqldblogger.Logger
type Logger struct {
	l *slog.Logger
}

var _ sqldblogger.Logger = (*Logger)(nil)

// NewLogger wraps l
func NewLogger(l *slog.Logger) *Logger {
	return &Logger{l: l}
}

func (q *Logger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	attrs := make([]any, 0, len(data)*2)
	for k, v := range data {
		attrs = append(attrs, k, v)
	}
	q.l.Log(ctx, slogLevel(level), msg, attrs...)
}

func slogLevel(level sqldblogger.Level) slog.Level {
	switch level {
	case sqldblogger.LevelError:
		return slog.LevelError
	case sqldblogger.LevelInfo:
		return slog.LevelInfo
	case sqldblogger.LevelDebug, sqldblogger.LevelTrace:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Open opens a database. When logger is not nil every call on the driver
// is logged through it.
func Open(driverName, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	if logger == nil {
		return db, nil
	}
	drv := db.Driver()
	if err := db.Close(); err != nil {
		return nil, err
	}
	return sqldblogger.OpenDriver(dsn, drv, NewLogger(logger),
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		sqldblogger.WithSQLQueryFieldname("sql"),
	), nil
}
