package schema

// Table is a CREATE, ALTER or DROP TABLE operation. Its columns carry
// their own modifiers, independent of the table's.
type Table struct {
	Base
	Database *Database
	Columns  []*Column
}

func newTable(db *Database, name string, modifier Modifier) *Table {
	return &Table{
		Base:     Base{Name: name, Modifier: modifier},
		Database: db,
	}
}

func (t *Table) enqueue(e Element) {
	t.Database.queue.Enqueue(e)
}

func (t *Table) namer() Namer {
	return t.Database.namer
}

// AddColumn appends a new column. One size is a length, two sizes are
// precision and scale.
func (t *Table) AddColumn(name string, dataType DataType, size ...int) *Column {
	c := newColumn(t, name, Add).SetType(dataType, size...)
	t.Columns = append(t.Columns, c)
	return c
}

// AddColumnFor appends a new column typed after the Go value sample
func (t *Table) AddColumnFor(name string, sample any, size ...int) *Column {
	dataType, _ := TypeOf(sample)
	return t.AddColumn(name, dataType, size...)
}

// AlterColumn appends a column change. Nothing changes until SetType,
// Rename or DropDefault is called on the result.
func (t *Table) AlterColumn(name string) *Column {
	c := newColumn(t, name, Alter)
	t.Columns = append(t.Columns, c)
	return c
}

// DropColumn appends a column removal
func (t *Table) DropColumn(name string) *Column {
	c := newColumn(t, name, Drop)
	t.Columns = append(t.Columns, c)
	return c
}

// Column returns the first column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddPrimaryKey queues a primary key named by the namer
func (t *Table) AddPrimaryKey(columns ...string) *PrimaryKeyConstraint {
	return t.AddPrimaryKeyNamed(t.namer().PrimaryKeyName(t.Name, columns), columns...)
}

// AddPrimaryKeyNamed queues a primary key with an explicit name
func (t *Table) AddPrimaryKeyNamed(name string, columns ...string) *PrimaryKeyConstraint {
	pk := &PrimaryKeyConstraint{Constraint: t.constraint(name, Add, columns)}
	t.enqueue(pk)
	return pk
}

// AddForeignKey queues a foreign key named by the namer
func (t *Table) AddForeignKey(columns []string, relatedTable string, relatedColumns []string) *ForeignKeyConstraint {
	name := t.namer().ForeignKeyName(t.Name, columns, relatedTable, relatedColumns)
	return t.AddForeignKeyNamed(name, columns, relatedTable, relatedColumns)
}

// AddForeignKeyNamed queues a foreign key with an explicit name
func (t *Table) AddForeignKeyNamed(name string, columns []string, relatedTable string, relatedColumns []string) *ForeignKeyConstraint {
	fk := &ForeignKeyConstraint{
		Constraint:     t.constraint(name, Add, columns),
		RelatedTable:   relatedTable,
		RelatedColumns: append([]string(nil), relatedColumns...),
	}
	t.enqueue(fk)
	return fk
}

// AddUnique queues a unique constraint named by the namer
func (t *Table) AddUnique(columns ...string) *UniqueConstraint {
	return t.AddUniqueNamed(t.namer().UniqueName(t.Name, columns), columns...)
}

// AddUniqueNamed queues a unique constraint with an explicit name
func (t *Table) AddUniqueNamed(name string, columns ...string) *UniqueConstraint {
	uq := &UniqueConstraint{Constraint: t.constraint(name, Add, columns)}
	t.enqueue(uq)
	return uq
}

// AddDefault queues a default value for column named by the namer
func (t *Table) AddDefault(column string, value any) *DefaultConstraint {
	return t.AddDefaultNamed(t.namer().DefaultName(t.Name, column), column, value)
}

// AddDefaultNamed queues a default value with an explicit constraint name
func (t *Table) AddDefaultNamed(name, column string, value any) *DefaultConstraint {
	df := &DefaultConstraint{
		Constraint: t.constraint(name, Add, []string{column}),
		Column:     column,
		Value:      value,
	}
	t.enqueue(df)
	return df
}

// AddIndex queues an index named by the namer
func (t *Table) AddIndex(columns ...string) *Index {
	return t.AddIndexNamed(t.namer().IndexName(t.Name, columns), columns...)
}

// AddIndexNamed queues an index with an explicit name
func (t *Table) AddIndexNamed(name string, columns ...string) *Index {
	ix := &Index{
		Base:    Base{Name: name, Modifier: Add},
		Table:   t,
		Columns: append([]string(nil), columns...),
	}
	t.enqueue(ix)
	return ix
}

// DropConstraint queues dropping a constraint of any kind by name
func (t *Table) DropConstraint(name string) *Constraint {
	c := t.constraint(name, Drop, nil)
	t.enqueue(&c)
	return &c
}

// DropPrimaryKey queues dropping the primary key. Without a name the
// dialect locates the key itself where it can.
func (t *Table) DropPrimaryKey(name ...string) *PrimaryKeyConstraint {
	pk := &PrimaryKeyConstraint{Constraint: t.constraint(first(name), Drop, nil)}
	t.enqueue(pk)
	return pk
}

// DropForeignKey queues dropping a foreign key by name
func (t *Table) DropForeignKey(name string) *ForeignKeyConstraint {
	fk := &ForeignKeyConstraint{Constraint: t.constraint(name, Drop, nil)}
	t.enqueue(fk)
	return fk
}

// DropUnique queues dropping a unique constraint by name
func (t *Table) DropUnique(name string) *UniqueConstraint {
	uq := &UniqueConstraint{Constraint: t.constraint(name, Drop, nil)}
	t.enqueue(uq)
	return uq
}

// DropDefault queues dropping a default constraint by name
func (t *Table) DropDefault(name string) *DefaultConstraint {
	df := &DefaultConstraint{Constraint: t.constraint(name, Drop, nil)}
	t.enqueue(df)
	return df
}

// DropDefaultByColumn queues dropping the default of column when its
// constraint name is unknown
func (t *Table) DropDefaultByColumn(column string) *DefaultConstraint {
	df := &DefaultConstraint{
		Constraint: t.constraint("", Drop, []string{column}),
		Column:     column,
	}
	t.enqueue(df)
	return df
}

// DropIndex queues dropping an index by name
func (t *Table) DropIndex(name string) *Index {
	ix := &Index{Base: Base{Name: name, Modifier: Drop}, Table: t}
	t.enqueue(ix)
	return ix
}

// Insert queues one INSERT per row
func (t *Table) Insert(rows ...Row) *Table {
	for _, row := range rows {
		t.enqueue(&Insert{Base: Base{Modifier: Add}, Table: t, Row: row})
	}
	return t
}

// InsertStruct queues an INSERT built from the fields of v
func (t *Table) InsertStruct(v any) error {
	row, err := RowFromStruct(v)
	if err != nil {
		return err
	}
	t.Insert(row)
	return nil
}

// Update queues an UPDATE of the rows matching where
func (t *Table) Update(set, where Row) *Table {
	t.enqueue(&Update{Base: Base{Modifier: Alter}, Table: t, Set: set, Where: where})
	return t
}

func (t *Table) constraint(name string, modifier Modifier, columns []string) Constraint {
	return Constraint{
		Base:    Base{Name: name, Modifier: modifier},
		Table:   t,
		Columns: append([]string(nil), columns...),
	}
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
