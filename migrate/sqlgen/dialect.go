package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

var (
	// ErrUnsupported is returned when a dialect cannot express an operation
	ErrUnsupported = errors.New("operation not supported by dialect")
	// ErrUnknownDialect is returned by ForProvider for unknown provider names
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrUnknownType is returned when a column has no type the dialect can render
	ErrUnknownType = errors.New("unknown data type")
)

// Dialect supplies the vendor specific parts of the generated SQL.
// Name arguments are raw identifiers; implementations quote them.
type Dialect interface {
	schema.Namer

	// Name is the canonical provider name (mssql, mysql, postgres, sqlite)
	Name() string
	// Separator is written after every statement of a script, if any
	Separator() string
	// Quote escapes an identifier
	Quote(identifier string) string
	// DataType renders the column's type keyword
	DataType(c *schema.Column) (string, error)
	// AutoIncrement renders the identity fragment of an auto-increment column
	AutoIncrement(c *schema.Column) string
	// InlineDefault renders a default inside a column definition
	InlineDefault(name, value string) string

	AddConstraint(table, fragment string) ([]string, error)
	DropConstraint(table, name string) ([]string, error)
	AddDefault(table, column, name, value string) ([]string, error)
	DropDefault(table, column, name string) ([]string, error)
	AlterColumn(table string, c *schema.Column, dataType string) ([]string, error)
	RenameColumn(table, from, to string) ([]string, error)
	DropPrimaryKey(table, name string) ([]string, error)
	DropForeignKey(table, name string) ([]string, error)
	DropUnique(table, name string) ([]string, error)
	DropIndex(table, name string) ([]string, error)
}

// ValueFormatter is implemented by dialects that render some values
// differently from FormatValue.
type ValueFormatter interface {
	FormatValue(v any) (string, bool)
}

// ForProvider returns the dialect registered for a provider name or alias
func ForProvider(provider string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "mssql", "sqlserver", "sql-server":
		return NewMSSQL(), nil
	case "mysql", "mariadb":
		return NewMySQL(), nil
	case "postgres", "postgresql", "pg":
		return NewPostgres(), nil
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, provider)
	}
}

// Providers lists the canonical provider names
func Providers() []string {
	return []string{"mssql", "mysql", "postgres", "sqlite"}
}

func unsupported(d Dialect, op string) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupported, op, d.Name())
}

func unknownType(c *schema.Column) error {
	return fmt.Errorf("%w: %s for column %s", ErrUnknownType, c.DataType, c.Name)
}

func sized(keyword string, length int) string {
	if length > 0 {
		return fmt.Sprintf("%s(%d)", keyword, length)
	}
	return keyword
}

func numeric(keyword string, c *schema.Column) string {
	if c.Precision > 0 {
		return fmt.Sprintf("%s(%d, %d)", keyword, c.Precision, c.Scale)
	}
	return keyword
}

func quoteWith(open, close string, identifier string) string {
	return open + strings.ReplaceAll(identifier, close, close+close) + close
}

// generic holds the statements most dialects share
type generic struct {
	quote func(string) string
}

func (g generic) addConstraint(table, fragment string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD %s;", g.quote(table), fragment)}
}

func (g generic) dropConstraint(table, name string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", g.quote(table), g.quote(name))}
}

func (g generic) renameColumn(table, from, to string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", g.quote(table), g.quote(from), g.quote(to))}
}

func (g generic) alterColumnDefault(table, column, action string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", g.quote(table), g.quote(column), action)}
}
