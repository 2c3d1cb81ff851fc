// Package executor runs generated SQL against a database, or records it
// instead of running it.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate/sqlgen"
)

// Querier is the subset of *sql.Conn and *sql.Tx used to run statements
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Context is the execution state of one migrate call: the shared
// connection, the transaction of the migration in flight, the dialect and
// the processor statements are routed through.
type Context struct {
	Conn      *sql.Conn
	Tx        *sql.Tx
	Dialect   sqlgen.Dialect
	Processor Processor
}

// DB returns the transaction when one is open, else the connection
func (c *Context) DB() Querier {
	if c.Tx != nil {
		return c.Tx
	}
	return c.Conn
}

// EngineStatement routes sql through the context's processor as an
// engine statement. Without a processor it is executed directly.
func (c *Context) EngineStatement(ctx context.Context, sql string) error {
	if c.Processor == nil {
		return exec(ctx, c, sql)
	}
	return c.Processor.ProcessEngineStatement(ctx, c, sql)
}

// MigrationStatement routes sql through the context's processor as a
// migration statement.
func (c *Context) MigrationStatement(ctx context.Context, sql string) error {
	if c.Processor == nil {
		return exec(ctx, c, sql)
	}
	return c.Processor.ProcessMigrationStatement(ctx, c, sql)
}

// Processor receives every statement the engine produces. Migration
// statements come from Up/Down; engine statements are bookkeeping such as
// history updates.
type Processor interface {
	ProcessMigrationStatement(ctx context.Context, ec *Context, sql string) error
	ProcessEngineStatement(ctx context.Context, ec *Context, sql string) error
}

// DatabaseProcessor executes every statement
type DatabaseProcessor struct{}

var _ Processor = DatabaseProcessor{}

// ProcessMigrationStatement executes sql
func (DatabaseProcessor) ProcessMigrationStatement(ctx context.Context, ec *Context, sql string) error {
	return exec(ctx, ec, sql)
}

// ProcessEngineStatement executes sql
func (DatabaseProcessor) ProcessEngineStatement(ctx context.Context, ec *Context, sql string) error {
	return exec(ctx, ec, sql)
}

func exec(ctx context.Context, ec *Context, query string) error {
	if ec == nil || (ec.Conn == nil && ec.Tx == nil) {
		return fmt.Errorf("failed to execute statement: no connection")
	}
	debug.Debug("Executing statement", "sql", query)
	if _, err := ec.DB().ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// WhatIfProcessor suppresses migration statements and forwards engine
// statements to Next. Suppressed statements are written to Out when set.
type WhatIfProcessor struct {
	Next Processor
	Out  io.Writer
}

var _ Processor = (*WhatIfProcessor)(nil)

// NewWhatIfProcessor wraps next. A nil next drops engine statements too.
func NewWhatIfProcessor(next Processor, out io.Writer) *WhatIfProcessor {
	return &WhatIfProcessor{Next: next, Out: out}
}

// ProcessMigrationStatement records sql without executing it
func (p *WhatIfProcessor) ProcessMigrationStatement(_ context.Context, _ *Context, sql string) error {
	debug.Debug("What-if: skipping statement", "sql", sql)
	if p.Out == nil {
		return nil
	}
	_, err := fmt.Fprintln(p.Out, sql)
	return err
}

// ProcessEngineStatement forwards sql to Next
func (p *WhatIfProcessor) ProcessEngineStatement(ctx context.Context, ec *Context, sql string) error {
	if p.Next == nil {
		return nil
	}
	return p.Next.ProcessEngineStatement(ctx, ec, sql)
}

// ScriptProcessor writes statements to a script instead of executing them.
// Each statement is followed by the dialect's batch separator, if any.
type ScriptProcessor struct {
	w             io.Writer
	separator     string
	includeEngine bool
	count         int
}

var _ Processor = (*ScriptProcessor)(nil)

// NewScriptProcessor creates a script writer. With includeEngine the
// bookkeeping statements are written as well, so the script can be run
// in place of the engine.
func NewScriptProcessor(w io.Writer, dialect sqlgen.Dialect, includeEngine bool) *ScriptProcessor {
	return &ScriptProcessor{w: w, separator: dialect.Separator(), includeEngine: includeEngine}
}

// ProcessMigrationStatement writes sql
func (p *ScriptProcessor) ProcessMigrationStatement(_ context.Context, _ *Context, sql string) error {
	return p.write(sql)
}

// ProcessEngineStatement writes sql when engine statements are included
func (p *ScriptProcessor) ProcessEngineStatement(_ context.Context, _ *Context, sql string) error {
	if !p.includeEngine {
		return nil
	}
	return p.write(sql)
}

// Count returns the number of statements written
func (p *ScriptProcessor) Count() int {
	return p.count
}

// Comment writes a SQL comment line
func (p *ScriptProcessor) Comment(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(p.w, "-- %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (p *ScriptProcessor) write(sql string) error {
	var sb strings.Builder
	sb.WriteString(sql)
	sb.WriteString("\n")
	if p.separator != "" {
		sb.WriteString(p.separator)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(p.w, sb.String()); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	p.count++
	return nil
}
