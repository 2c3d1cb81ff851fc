package sqlgen

import (
	"fmt"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

// SQLite renders SQL for SQLite. SQLite cannot alter constraints or
// column types of existing tables; those operations fail with
// ErrUnsupported.
type SQLite struct {
	schema.DefaultNamer
	generic
}

var _ Dialect = (*SQLite)(nil)

// NewSQLite creates the SQLite dialect
func NewSQLite() *SQLite {
	d := &SQLite{}
	d.generic = generic{quote: d.Quote}
	return d
}

func (d *SQLite) Name() string      { return "sqlite" }
func (d *SQLite) Separator() string { return "" }

// Quote wraps identifiers in double quotes
func (d *SQLite) Quote(identifier string) string {
	return quoteWith(`"`, `"`, identifier)
}

// DataType renders integer types as INTEGER so that a single column
// integer primary key becomes the rowid alias.
func (d *SQLite) DataType(c *schema.Column) (string, error) {
	switch c.DataType {
	case schema.TinyInt, schema.SmallInt, schema.Int, schema.BigInt:
		return "INTEGER", nil
	case schema.Single, schema.Double:
		return "REAL", nil
	case schema.Decimal, schema.Currency:
		return numeric("NUMERIC", c), nil
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.Char, schema.NChar:
		return sized("CHAR", c.Length), nil
	case schema.VarChar, schema.NVarChar:
		return sized("VARCHAR", c.Length), nil
	case schema.Guid, schema.VarCharMax, schema.NVarCharMax, schema.Text, schema.NText, schema.Xml, schema.TimeOffset:
		return "TEXT", nil
	case schema.Date:
		return "DATE", nil
	case schema.Time:
		return "TIME", nil
	case schema.DateTime:
		return "DATETIME", nil
	case schema.TimeStamp:
		return "TIMESTAMP", nil
	case schema.Binary, schema.VarBinary, schema.VarBinaryMax:
		return "BLOB", nil
	}
	return "", unknownType(c)
}

// AutoIncrement renders nothing: INTEGER primary keys already take the
// next rowid.
func (d *SQLite) AutoIncrement(*schema.Column) string {
	return ""
}

func (d *SQLite) InlineDefault(name, value string) string {
	if name == "" {
		return "DEFAULT " + value
	}
	return fmt.Sprintf("CONSTRAINT %s DEFAULT %s", d.Quote(name), value)
}

func (d *SQLite) AddConstraint(string, string) ([]string, error) {
	return nil, unsupported(d, "add constraint to existing table")
}

func (d *SQLite) DropConstraint(string, string) ([]string, error) {
	return nil, unsupported(d, "drop constraint")
}

func (d *SQLite) AddDefault(string, string, string, string) ([]string, error) {
	return nil, unsupported(d, "add default to existing column")
}

func (d *SQLite) DropDefault(string, string, string) ([]string, error) {
	return nil, unsupported(d, "drop default")
}

func (d *SQLite) AlterColumn(string, *schema.Column, string) ([]string, error) {
	return nil, unsupported(d, "alter column type")
}

func (d *SQLite) RenameColumn(table, from, to string) ([]string, error) {
	return d.renameColumn(table, from, to), nil
}

func (d *SQLite) DropPrimaryKey(string, string) ([]string, error) {
	return nil, unsupported(d, "drop primary key")
}

func (d *SQLite) DropForeignKey(string, string) ([]string, error) {
	return nil, unsupported(d, "drop foreign key")
}

func (d *SQLite) DropUnique(string, string) ([]string, error) {
	return nil, unsupported(d, "drop unique constraint")
}

func (d *SQLite) DropIndex(_, name string) ([]string, error) {
	return []string{fmt.Sprintf("DROP INDEX %s;", d.Quote(name))}, nil
}
