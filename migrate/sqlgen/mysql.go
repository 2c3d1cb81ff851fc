package sqlgen

import (
	"fmt"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

// MySQL renders SQL for MySQL and MariaDB
type MySQL struct {
	schema.DefaultNamer
	generic
}

var _ Dialect = (*MySQL)(nil)

// NewMySQL creates the MySQL dialect
func NewMySQL() *MySQL {
	d := &MySQL{DefaultNamer: schema.DefaultNamer{MaxLength: 64}}
	d.generic = generic{quote: d.Quote}
	return d
}

func (d *MySQL) Name() string { return "mysql" }

// Separator is empty: MySQL scripts need no batch separator
func (d *MySQL) Separator() string { return "" }

// Quote wraps identifiers in backticks
func (d *MySQL) Quote(identifier string) string {
	return quoteWith("`", "`", identifier)
}

// DataType maps types to MySQL keywords. National character types
// collapse onto their plain variants.
func (d *MySQL) DataType(c *schema.Column) (string, error) {
	switch c.DataType {
	case schema.Guid:
		return "CHAR(36)", nil
	case schema.TinyInt:
		return "TINYINT", nil
	case schema.SmallInt:
		return "SMALLINT", nil
	case schema.Int:
		return "INT", nil
	case schema.BigInt:
		return "BIGINT", nil
	case schema.Single:
		return "FLOAT", nil
	case schema.Double:
		return "DOUBLE", nil
	case schema.Decimal:
		return numeric("DECIMAL", c), nil
	case schema.Currency:
		if c.Precision > 0 {
			return numeric("DECIMAL", c), nil
		}
		return "DECIMAL(19, 4)", nil
	case schema.Boolean:
		return "TINYINT(1)", nil
	case schema.Char, schema.NChar:
		return sized("CHAR", c.Length), nil
	case schema.VarChar, schema.NVarChar:
		if c.Length == 0 {
			return "VARCHAR(255)", nil
		}
		return sized("VARCHAR", c.Length), nil
	case schema.VarCharMax, schema.NVarCharMax, schema.Xml:
		return "LONGTEXT", nil
	case schema.Text, schema.NText:
		return "TEXT", nil
	case schema.Date:
		return "DATE", nil
	case schema.Time, schema.TimeOffset:
		return "TIME", nil
	case schema.DateTime:
		return sized("DATETIME", c.Length), nil
	case schema.TimeStamp:
		return sized("TIMESTAMP", c.Length), nil
	case schema.Binary:
		return sized("BINARY", c.Length), nil
	case schema.VarBinary:
		if c.Length == 0 {
			return "VARBINARY(255)", nil
		}
		return sized("VARBINARY", c.Length), nil
	case schema.VarBinaryMax:
		return "LONGBLOB", nil
	}
	return "", unknownType(c)
}

// AutoIncrement renders AUTO_INCREMENT. MySQL takes the seed from the
// table options, so seed and step are ignored.
func (d *MySQL) AutoIncrement(*schema.Column) string {
	return "AUTO_INCREMENT"
}

// InlineDefault ignores the name: MySQL defaults are not named constraints
func (d *MySQL) InlineDefault(_, value string) string {
	return "DEFAULT " + value
}

func (d *MySQL) AddConstraint(table, fragment string) ([]string, error) {
	return d.addConstraint(table, fragment), nil
}

func (d *MySQL) DropConstraint(table, name string) ([]string, error) {
	return d.dropConstraint(table, name), nil
}

func (d *MySQL) AddDefault(table, column, _, value string) ([]string, error) {
	return d.alterColumnDefault(table, column, "SET DEFAULT "+value), nil
}

func (d *MySQL) DropDefault(table, column, _ string) ([]string, error) {
	if column == "" {
		return nil, unsupported(d, "drop default by constraint name")
	}
	return d.alterColumnDefault(table, column, "DROP DEFAULT"), nil
}

// AlterColumn uses MODIFY COLUMN with the full column definition
func (d *MySQL) AlterColumn(table string, c *schema.Column, dataType string) ([]string, error) {
	null := "NULL"
	if !c.Nullable {
		null = "NOT NULL"
	}
	def := fmt.Sprintf("%s %s %s", d.Quote(c.Name), dataType, null)
	if c.Identity != nil {
		def += " " + d.AutoIncrement(c)
	}
	return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", d.Quote(table), def)}, nil
}

func (d *MySQL) RenameColumn(table, from, to string) ([]string, error) {
	return d.renameColumn(table, from, to), nil
}

func (d *MySQL) DropPrimaryKey(table, _ string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", d.Quote(table))}, nil
}

func (d *MySQL) DropForeignKey(table, name string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", d.Quote(table), d.Quote(name))}, nil
}

func (d *MySQL) DropUnique(table, name string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", d.Quote(table), d.Quote(name))}, nil
}

func (d *MySQL) DropIndex(table, name string) ([]string, error) {
	return []string{fmt.Sprintf("DROP INDEX %s ON %s;", d.Quote(name), d.Quote(table))}, nil
}
