package sqlgen

import (
	"fmt"
	"reflect"

	"github.com/lib/pq"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

// Postgres renders SQL for PostgreSQL
type Postgres struct {
	schema.DefaultNamer
	generic
}

var (
	_ Dialect        = (*Postgres)(nil)
	_ ValueFormatter = (*Postgres)(nil)
)

// NewPostgres creates the PostgreSQL dialect
func NewPostgres() *Postgres {
	d := &Postgres{DefaultNamer: schema.DefaultNamer{MaxLength: 63}}
	d.generic = generic{quote: d.Quote}
	return d
}

func (d *Postgres) Name() string      { return "postgres" }
func (d *Postgres) Separator() string { return "" }

// Quote uses pq.QuoteIdentifier
func (d *Postgres) Quote(identifier string) string {
	return pq.QuoteIdentifier(identifier)
}

// FormatValue renders booleans as TRUE/FALSE; PostgreSQL does not cast
// integers to boolean implicitly.
func (d *Postgres) FormatValue(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.IsValid() && rv.Kind() == reflect.Bool {
		if rv.Bool() {
			return "TRUE", true
		}
		return "FALSE", true
	}
	return "", false
}

func (d *Postgres) DataType(c *schema.Column) (string, error) {
	switch c.DataType {
	case schema.Guid:
		return "UUID", nil
	case schema.TinyInt, schema.SmallInt:
		return "SMALLINT", nil
	case schema.Int:
		return "INTEGER", nil
	case schema.BigInt:
		return "BIGINT", nil
	case schema.Single:
		return "REAL", nil
	case schema.Double:
		return "DOUBLE PRECISION", nil
	case schema.Decimal:
		return numeric("NUMERIC", c), nil
	case schema.Currency:
		return "MONEY", nil
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.Char, schema.NChar:
		return sized("CHAR", c.Length), nil
	case schema.VarChar, schema.NVarChar:
		return sized("VARCHAR", c.Length), nil
	case schema.VarCharMax, schema.NVarCharMax, schema.Text, schema.NText:
		return "TEXT", nil
	case schema.Xml:
		return "XML", nil
	case schema.Date:
		return "DATE", nil
	case schema.Time:
		return "TIME", nil
	case schema.DateTime:
		return sized("TIMESTAMP", c.Length), nil
	case schema.TimeStamp:
		return sized("TIMESTAMPTZ", c.Length), nil
	case schema.TimeOffset:
		return "INTERVAL", nil
	case schema.Binary, schema.VarBinary, schema.VarBinaryMax:
		return "BYTEA", nil
	}
	return "", unknownType(c)
}

// AutoIncrement renders an identity column
func (d *Postgres) AutoIncrement(c *schema.Column) string {
	return fmt.Sprintf("GENERATED BY DEFAULT AS IDENTITY (START WITH %d INCREMENT BY %d)", c.Identity.Seed, c.Identity.Step)
}

func (d *Postgres) InlineDefault(_, value string) string {
	return "DEFAULT " + value
}

func (d *Postgres) AddConstraint(table, fragment string) ([]string, error) {
	return d.addConstraint(table, fragment), nil
}

func (d *Postgres) DropConstraint(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *Postgres) AddDefault(table, column, _, value string) ([]string, error) {
	return d.alterColumnDefault(table, column, "SET DEFAULT "+value), nil
}

func (d *Postgres) DropDefault(table, column, _ string) ([]string, error) {
	if column == "" {
		return nil, unsupported(d, "drop default by constraint name")
	}
	return d.alterColumnDefault(table, column, "DROP DEFAULT"), nil
}

// AlterColumn changes the type and nullability in two statements
func (d *Postgres) AlterColumn(table string, c *schema.Column, dataType string) ([]string, error) {
	null := "DROP NOT NULL"
	if !c.Nullable {
		null = "SET NOT NULL"
	}
	return []string{
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;", d.Quote(table), d.Quote(c.Name), dataType),
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", d.Quote(table), d.Quote(c.Name), null),
	}, nil
}

func (d *Postgres) RenameColumn(table, from, to string) ([]string, error) {
	return d.renameColumn(table, from, to), nil
}

// DropPrimaryKey falls back to the <table>_pkey name PostgreSQL assigns
func (d *Postgres) DropPrimaryKey(table, name string) ([]string, error) {
	if name == "" {
		name = table + "_pkey"
	}
	return d.dropConstraint(table, name), nil
}

func (d *Postgres) DropForeignKey(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *Postgres) DropUnique(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *Postgres) DropIndex(_, name string) ([]string, error) {
	return []string{fmt.Sprintf("DROP INDEX %s;", d.Quote(name))}, nil
}
