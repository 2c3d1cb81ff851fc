package migrate

import (
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/satishbabariya/migrate-go/migrate/executor"
	"github.com/satishbabariya/migrate-go/migrate/history"
)

// DefaultTimeout bounds the transaction of a single migration
const DefaultTimeout = 15 * time.Minute

// Option configures an Engine
type Option func(*Engine)

// WithHistory sets the history repository. The default stores history in
// a MigrationHistory table of the migrated database.
func WithHistory(repo history.Repository) Option {
	return func(e *Engine) {
		e.history = repo
	}
}

// WithProcessor sets the statement processor
func WithProcessor(p executor.Processor) Option {
	return func(e *Engine) {
		e.processor = p
	}
}

// WithListener adds a listener. Listeners are notified in the order added.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIsolation sets the isolation level of migration transactions
func WithIsolation(level sql.IsolationLevel) Option {
	return func(e *Engine) {
		e.isolation = level
	}
}

// WithTimeout sets the per-migration transaction timeout
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock sets the time source for history dates
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWhatIf runs migrations without executing their statements or
// writing history. Skipped statements are written to w when it is not nil.
func WithWhatIf(w io.Writer) Option {
	return func(e *Engine) {
		e.whatIf = true
		e.whatIfOut = w
	}
}
