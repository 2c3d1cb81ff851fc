package sqlgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

// MSSQL renders SQL for Microsoft SQL Server
type MSSQL struct {
	schema.DefaultNamer
	generic
}

var _ Dialect = (*MSSQL)(nil)

// NewMSSQL creates the SQL Server dialect
func NewMSSQL() *MSSQL {
	d := &MSSQL{DefaultNamer: schema.DefaultNamer{MaxLength: 128}}
	d.generic = generic{quote: d.Quote}
	return d
}

func (d *MSSQL) Name() string      { return "mssql" }
func (d *MSSQL) Separator() string { return "GO" }

// Quote wraps identifiers in brackets
func (d *MSSQL) Quote(identifier string) string {
	return quoteWith("[", "]", identifier)
}

func (d *MSSQL) DataType(c *schema.Column) (string, error) {
	switch c.DataType {
	case schema.Guid:
		return "UNIQUEIDENTIFIER", nil
	case schema.TinyInt:
		return "TINYINT", nil
	case schema.SmallInt:
		return "SMALLINT", nil
	case schema.Int:
		return "INT", nil
	case schema.BigInt:
		return "BIGINT", nil
	case schema.Single:
		return "REAL", nil
	case schema.Double:
		return "FLOAT", nil
	case schema.Decimal:
		return numeric("DECIMAL", c), nil
	case schema.Currency:
		return "MONEY", nil
	case schema.Boolean:
		return "BIT", nil
	case schema.Char:
		return sized("CHAR", c.Length), nil
	case schema.VarChar:
		return sized("VARCHAR", c.Length), nil
	case schema.VarCharMax:
		return "VARCHAR(MAX)", nil
	case schema.NChar:
		return sized("NCHAR", c.Length), nil
	case schema.NVarChar:
		return sized("NVARCHAR", c.Length), nil
	case schema.NVarCharMax:
		return "NVARCHAR(MAX)", nil
	case schema.Text:
		return "TEXT", nil
	case schema.NText:
		return "NTEXT", nil
	case schema.Xml:
		return "XML", nil
	case schema.Date:
		return "DATE", nil
	case schema.Time:
		return "TIME", nil
	case schema.DateTime:
		return "DATETIME", nil
	case schema.TimeStamp:
		return "TIMESTAMP", nil
	case schema.TimeOffset:
		return "DATETIMEOFFSET", nil
	case schema.Binary:
		return sized("BINARY", c.Length), nil
	case schema.VarBinary:
		return sized("VARBINARY", c.Length), nil
	case schema.VarBinaryMax:
		return "VARBINARY(MAX)", nil
	}
	return "", unknownType(c)
}

// AutoIncrement renders IDENTITY(seed, step)
func (d *MSSQL) AutoIncrement(c *schema.Column) string {
	return fmt.Sprintf("IDENTITY(%d, %d)", c.Identity.Seed, c.Identity.Step)
}

func (d *MSSQL) InlineDefault(name, value string) string {
	if name == "" {
		return "DEFAULT " + value
	}
	return fmt.Sprintf("CONSTRAINT %s DEFAULT %s", d.Quote(name), value)
}

func (d *MSSQL) AddConstraint(table, fragment string) ([]string, error) {
	return d.addConstraint(table, fragment), nil
}

func (d *MSSQL) DropConstraint(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *MSSQL) AddDefault(table, column, name, value string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT(%s) FOR %s;",
		d.Quote(table), d.Quote(name), value, d.Quote(column))}, nil
}

// DropDefault drops a default by name, or looks the constraint name up in
// the system catalog when only the column is known.
func (d *MSSQL) DropDefault(table, column, name string) ([]string, error) {
	if name != "" {
		return d.dropConstraint(table, name), nil
	}
	if column == "" {
		return nil, unsupported(d, "drop default without name or column")
	}
	v := "@" + variableName(column) + "DefaultName"
	script := strings.Join([]string{
		fmt.Sprintf("DECLARE %s VARCHAR(MAX);", v),
		fmt.Sprintf("SELECT %s = o2.name FROM syscolumns c JOIN sysobjects o ON c.id = o.id JOIN sysobjects o2 ON c.cdefault = o2.id WHERE o.name = %s AND c.name = %s;",
			v, FormatValue(table), FormatValue(column)),
		fmt.Sprintf("EXEC('ALTER TABLE %s DROP CONSTRAINT ' + %s);", d.Quote(table), v),
	}, "\n")
	return []string{script}, nil
}

func (d *MSSQL) AlterColumn(table string, c *schema.Column, dataType string) ([]string, error) {
	null := "NULL"
	if !c.Nullable {
		null = "NOT NULL"
	}
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s %s;",
		d.Quote(table), d.Quote(c.Name), dataType, null)}, nil
}

// RenameColumn uses sp_rename
func (d *MSSQL) RenameColumn(table, from, to string) ([]string, error) {
	return []string{fmt.Sprintf("EXEC sp_rename '%s.%s', '%s', 'COLUMN';",
		escapeQuotes(d.Quote(table)), escapeQuotes(d.Quote(from)), escapeQuotes(to))}, nil
}

func (d *MSSQL) DropPrimaryKey(table, name string) ([]string, error) {
	if name != "" {
		return d.dropConstraint(table, name), nil
	}
	script := strings.Join([]string{
		"DECLARE @PrimaryKeyName NVARCHAR(256);",
		fmt.Sprintf("SELECT @PrimaryKeyName = name FROM sys.key_constraints WHERE type = 'PK' AND parent_object_id = OBJECT_ID(%s);",
			FormatValue(table)),
		fmt.Sprintf("EXEC('ALTER TABLE %s DROP CONSTRAINT ' + @PrimaryKeyName);", d.Quote(table)),
	}, "\n")
	return []string{script}, nil
}

func (d *MSSQL) DropForeignKey(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *MSSQL) DropUnique(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *MSSQL) DropIndex(table, name string) ([]string, error) {
	return []string{fmt.Sprintf("DROP INDEX %s ON %s;", d.Quote(name), d.Quote(table))}, nil
}

// IdentityInsert queues SET IDENTITY_INSERT for the table, allowing
// explicit values in its identity column while on.
func IdentityInsert(t *schema.Table, on bool) {
	state := "OFF"
	if on {
		state = "ON"
	}
	t.Database.ExecuteSQL(fmt.Sprintf("SET IDENTITY_INSERT %s %s", quoteWith("[", "]", t.Name), state))
}

func variableName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, s)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
