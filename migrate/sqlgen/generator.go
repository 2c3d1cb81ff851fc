// Package sqlgen renders the queued operations of a schema.Database into
// SQL statements for a specific dialect.
package sqlgen

import (
	"fmt"
	"iter"
	"strings"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

// Generator drains a Database queue into SQL commands
type Generator struct {
	dialect Dialect
}

// New creates a generator for the given dialect
func New(dialect Dialect) *Generator {
	return &Generator{dialect: dialect}
}

// Dialect returns the dialect the generator renders for
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// Commands lazily drains the queue of db. Each element is dequeued and
// rendered only when the previous commands have been consumed. Element
// and modifier combinations without a rendering are skipped.
func (g *Generator) Commands(db *schema.Database) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		q := db.Queue()
		for {
			e, ok := q.Dequeue()
			if !ok {
				return
			}
			cmds, err := g.render(q, e)
			if err != nil {
				yield("", fmt.Errorf("failed to render %s %q: %w", schema.Kind(e), schema.NameOf(e), err))
				return
			}
			for _, cmd := range cmds {
				if !yield(cmd, nil) {
					return
				}
			}
		}
	}
}

// Generate drains the queue of db and returns all commands
func (g *Generator) Generate(db *schema.Database) ([]string, error) {
	var out []string
	for cmd, err := range g.Commands(db) {
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

func (g *Generator) render(q *schema.Queue, e schema.Element) ([]string, error) {
	d := g.dialect
	mod := schema.ModifierOf(e)

	switch e := e.(type) {
	case *schema.Table:
		switch mod {
		case schema.Add:
			return g.createTable(q, e)
		case schema.Alter:
			return g.alterTable(q, e)
		case schema.Drop:
			return []string{fmt.Sprintf("DROP TABLE %s;", d.Quote(e.Name))}, nil
		}

	case *schema.Index:
		switch mod {
		case schema.Add:
			return []string{fmt.Sprintf("CREATE INDEX %s ON %s (%s);",
				d.Quote(e.Name), d.Quote(e.Table.Name), g.columnList(e.Columns))}, nil
		case schema.Drop:
			return d.DropIndex(e.Table.Name, e.Name)
		}

	case *schema.Insert:
		if mod == schema.Add {
			return []string{g.insert(e)}, nil
		}

	case *schema.Update:
		if mod == schema.Alter {
			return []string{g.update(e)}, nil
		}

	case *schema.ForeignKeyConstraint:
		switch mod {
		case schema.Add:
			return d.AddConstraint(e.Table.Name, g.foreignKey(e))
		case schema.Drop:
			return d.DropForeignKey(e.Table.Name, e.Name)
		}

	case *schema.UniqueConstraint:
		switch mod {
		case schema.Add:
			return d.AddConstraint(e.Table.Name, g.unique(e))
		case schema.Drop:
			return d.DropUnique(e.Table.Name, e.Name)
		}

	case *schema.DefaultConstraint:
		switch mod {
		case schema.Add:
			return d.AddDefault(e.Table.Name, e.Column, e.Name, g.value(e.Value))
		case schema.Drop:
			return d.DropDefault(e.Table.Name, e.Column, e.Name)
		}

	case *schema.PrimaryKeyConstraint:
		switch mod {
		case schema.Add:
			return d.AddConstraint(e.Table.Name, g.primaryKey(e.Name, e.Columns))
		case schema.Drop:
			return d.DropPrimaryKey(e.Table.Name, e.Name)
		}

	case *schema.Constraint:
		if mod == schema.Drop {
			return d.DropConstraint(e.Table.Name, e.Name)
		}

	case *schema.SQLStatement:
		if mod == schema.Add {
			sql := e.SQL
			if !strings.HasSuffix(strings.TrimSpace(sql), ";") {
				sql += ";"
			}
			return []string{sql}, nil
		}
	}
	return nil, nil
}

// pending indexes the queued Add constraints of one table
type pending struct {
	defaults    map[string]*schema.DefaultConstraint
	primaryKeys []*schema.PrimaryKeyConstraint
	foreignKeys []*schema.ForeignKeyConstraint
	uniques     []*schema.UniqueConstraint
}

func collect(q *schema.Queue, t *schema.Table) pending {
	p := pending{defaults: map[string]*schema.DefaultConstraint{}}
	for _, e := range q.Elements() {
		if schema.ModifierOf(e) != schema.Add {
			continue
		}
		switch c := e.(type) {
		case *schema.DefaultConstraint:
			if _, seen := p.defaults[c.Column]; !seen && c.Table == t {
				p.defaults[c.Column] = c
			}
		case *schema.PrimaryKeyConstraint:
			if c.Table == t {
				p.primaryKeys = append(p.primaryKeys, c)
			}
		case *schema.ForeignKeyConstraint:
			if c.Table == t {
				p.foreignKeys = append(p.foreignKeys, c)
			}
		case *schema.UniqueConstraint:
			if c.Table == t {
				p.uniques = append(p.uniques, c)
			}
		}
	}
	return p
}

// createTable renders one CREATE TABLE holding the table's columns,
// their defaults and every pending primary key, foreign key and unique
// constraint of the table. The folded constraints are struck from the
// queue afterwards.
func (g *Generator) createTable(q *schema.Queue, t *schema.Table) ([]string, error) {
	p := collect(q, t)
	consumed := map[schema.Element]struct{}{}

	var fragments []string
	for _, c := range t.Columns {
		inline := ""
		if df, ok := p.defaults[c.Name]; ok {
			inline = g.dialect.InlineDefault(df.Name, g.value(df.Value))
			consumed[df] = struct{}{}
		}
		def, err := g.columnDefinition(c, inline)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, def)
	}

	if len(p.primaryKeys) > 0 {
		name := ""
		var columns []string
		for _, pk := range p.primaryKeys {
			if name == "" {
				name = pk.Name
			}
			columns = appendUnique(columns, pk.Columns...)
			consumed[pk] = struct{}{}
		}
		fragments = append(fragments, g.primaryKey(name, columns))
	}
	for _, fk := range p.foreignKeys {
		fragments = append(fragments, g.foreignKey(fk))
		consumed[fk] = struct{}{}
	}
	for _, uq := range p.uniques {
		fragments = append(fragments, g.unique(uq))
		consumed[uq] = struct{}{}
	}

	q.Filter(consumed)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", g.dialect.Quote(t.Name)))
	for i, f := range fragments {
		sb.WriteString("\t")
		sb.WriteString(f)
		if i != len(fragments)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(");")
	return []string{sb.String()}, nil
}

// alterTable renders one or more statements per column, in column order
func (g *Generator) alterTable(q *schema.Queue, t *schema.Table) ([]string, error) {
	d := g.dialect
	table := d.Quote(t.Name)

	var out []string
	for _, c := range t.Columns {
		switch c.Modifier {
		case schema.Add:
			inline := ""
			if df := findDefault(q, t, c.Name, schema.Add); df != nil {
				inline = d.InlineDefault(df.Name, g.value(df.Value))
				q.Remove(df)
			}
			def, err := g.columnDefinition(c, inline)
			if err != nil {
				return nil, err
			}
			out = append(out, fmt.Sprintf("ALTER TABLE %s ADD %s;", table, def))

		case schema.Drop:
			cmds, err := g.dropPendingDefault(q, t, c.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, cmds...)
			out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, d.Quote(c.Name)))

		case schema.Alter:
			cmds, err := g.dropPendingDefault(q, t, c.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, cmds...)

			if c.DataType != schema.Unspecified {
				dataType, err := d.DataType(c)
				if err != nil {
					return nil, err
				}
				cmds, err := d.AlterColumn(t.Name, c, dataType)
				if err != nil {
					return nil, err
				}
				out = append(out, cmds...)
			}
			if c.NewName != "" {
				cmds, err := d.RenameColumn(t.Name, c.Name, c.NewName)
				if err != nil {
					return nil, err
				}
				out = append(out, cmds...)
			}
		}
	}
	return out, nil
}

func (g *Generator) dropPendingDefault(q *schema.Queue, t *schema.Table, column string) ([]string, error) {
	df := findDefault(q, t, column, schema.Drop)
	if df == nil {
		return nil, nil
	}
	q.Remove(df)
	return g.dialect.DropDefault(t.Name, column, df.Name)
}

func findDefault(q *schema.Queue, t *schema.Table, column string, mod schema.Modifier) *schema.DefaultConstraint {
	for _, e := range q.Elements() {
		df, ok := e.(*schema.DefaultConstraint)
		if ok && df.Modifier == mod && df.Table == t && df.Column == column {
			return df
		}
	}
	return nil
}

// columnDefinition renders "<name> <type> <NULL|NOT NULL> [identity] [default]"
func (g *Generator) columnDefinition(c *schema.Column, inlineDefault string) (string, error) {
	dataType, err := g.dialect.DataType(c)
	if err != nil {
		return "", err
	}
	null := "NULL"
	if !c.Nullable {
		null = "NOT NULL"
	}

	def := fmt.Sprintf("%s %s %s", g.dialect.Quote(c.Name), dataType, null)
	if c.Identity != nil {
		if inc := g.dialect.AutoIncrement(c); inc != "" {
			def += " " + inc
		}
	}
	if inlineDefault != "" {
		def += " " + inlineDefault
	}
	return def, nil
}

func (g *Generator) primaryKey(name string, columns []string) string {
	return g.named(name, fmt.Sprintf("PRIMARY KEY (%s)", g.columnList(columns)))
}

func (g *Generator) foreignKey(fk *schema.ForeignKeyConstraint) string {
	s := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.columnList(fk.Columns), g.dialect.Quote(fk.RelatedTable), g.columnList(fk.RelatedColumns))
	switch fk.OnDelete {
	case schema.Cascade:
		s += " ON DELETE CASCADE"
	case schema.Nullify:
		s += " ON DELETE SET NULL"
	}
	return g.named(fk.Name, s)
}

func (g *Generator) unique(uq *schema.UniqueConstraint) string {
	return g.named(uq.Name, fmt.Sprintf("UNIQUE (%s)", g.columnList(uq.Columns)))
}

func (g *Generator) named(name, fragment string) string {
	if name == "" {
		return fragment
	}
	return fmt.Sprintf("CONSTRAINT %s %s", g.dialect.Quote(name), fragment)
}

func (g *Generator) insert(ins *schema.Insert) string {
	names := make([]string, len(ins.Row))
	values := make([]string, len(ins.Row))
	for i, f := range ins.Row {
		names[i] = g.dialect.Quote(f.Column)
		values[i] = g.value(f.Value)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES(%s);",
		g.dialect.Quote(ins.Table.Name), strings.Join(names, ", "), strings.Join(values, ", "))
}

func (g *Generator) update(u *schema.Update) string {
	sql := fmt.Sprintf("UPDATE %s SET %s", g.dialect.Quote(u.Table.Name), strings.Join(g.assignments(u.Set), ", "))
	if len(u.Where) > 0 {
		sql += " WHERE " + strings.Join(g.conditions(u.Where), " AND ")
	}
	return sql + ";"
}

func (g *Generator) assignments(row schema.Row) []string {
	out := make([]string, len(row))
	for i, f := range row {
		out[i] = fmt.Sprintf("%s = %s", g.dialect.Quote(f.Column), g.value(f.Value))
	}
	return out
}

// conditions renders a row as equality tests. NULL never compares equal, so
// nil values become IS NULL.
func (g *Generator) conditions(row schema.Row) []string {
	out := make([]string, len(row))
	for i, f := range row {
		if v := g.value(f.Value); v == "NULL" {
			out[i] = fmt.Sprintf("%s IS NULL", g.dialect.Quote(f.Column))
		} else {
			out[i] = fmt.Sprintf("%s = %s", g.dialect.Quote(f.Column), v)
		}
	}
	return out
}

func (g *Generator) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = g.dialect.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// value formats v, giving the dialect the first chance
func (g *Generator) value(v any) string {
	if vf, ok := g.dialect.(ValueFormatter); ok {
		if s, ok := vf.FormatValue(v); ok {
			return s
		}
	}
	return FormatValue(v)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
