package schema

// Identity holds the seed and step of an auto-increment column
type Identity struct {
	Seed int64
	Step int64
}

// Column is a column definition or change inside a Table.
// Length and Precision/Scale are mutually exclusive.
type Column struct {
	Base
	Table     *Table
	NewName   string
	DataType  DataType
	Length    int
	Precision int
	Scale     int
	Nullable  bool
	Identity  *Identity

	def *DefaultConstraint
	fk  *ForeignKeyConstraint
}

func newColumn(t *Table, name string, modifier Modifier) *Column {
	return &Column{
		Base:     Base{Name: name, Modifier: modifier},
		Table:    t,
		Nullable: true,
	}
}

// SetType sets the data type. One size is a length, two sizes are
// precision and scale. Previous sizes are cleared.
func (c *Column) SetType(dataType DataType, size ...int) *Column {
	c.DataType = dataType
	c.Length, c.Precision, c.Scale = 0, 0, 0
	switch {
	case len(size) == 1:
		c.Length = size[0]
	case len(size) >= 2:
		c.Precision, c.Scale = size[0], size[1]
	}
	return c
}

// NotNull marks the column as NOT NULL
func (c *Column) NotNull() *Column {
	c.Nullable = false
	return c
}

// Null marks the column as nullable
func (c *Column) Null() *Column {
	c.Nullable = true
	return c
}

// AutoIncrement makes the column an identity starting at 1 with step 1
func (c *Column) AutoIncrement() *Column {
	return c.AutoIncrementFrom(1, 1)
}

// AutoIncrementFrom makes the column an identity with the given seed and step
func (c *Column) AutoIncrementFrom(seed, step int64) *Column {
	c.Identity = &Identity{Seed: seed, Step: step}
	return c
}

// Rename sets the new name of an altered column
func (c *Column) Rename(newName string) *Column {
	c.NewName = newName
	return c
}

// Default queues a default constraint for the column. Calling it again
// replaces the value of the pending constraint.
func (c *Column) Default(value any) *Column {
	if c.def != nil {
		c.def.Value = value
		return c
	}
	c.def = c.Table.AddDefault(c.Name, value)
	return c
}

// DefaultValue returns the value given to Default
func (c *Column) DefaultValue() (any, bool) {
	if c.def == nil {
		return nil, false
	}
	return c.def.Value, true
}

// DropDefault queues removal of the column's current default
func (c *Column) DropDefault() *Column {
	c.Table.DropDefaultByColumn(c.Name)
	return c
}

// PrimaryKey queues a primary key on this column and makes it NOT NULL.
// Several columns of a new table marked this way form a compound key.
func (c *Column) PrimaryKey(name ...string) *Column {
	if n := first(name); n != "" {
		c.Table.AddPrimaryKeyNamed(n, c.Name)
	} else {
		c.Table.AddPrimaryKey(c.Name)
	}
	return c.NotNull()
}

// Unique queues a unique constraint on this column
func (c *Column) Unique(name ...string) *Column {
	if n := first(name); n != "" {
		c.Table.AddUniqueNamed(n, c.Name)
	} else {
		c.Table.AddUnique(c.Name)
	}
	return c
}

// Index queues an index on this column
func (c *Column) Index(name ...string) *Column {
	if n := first(name); n != "" {
		c.Table.AddIndexNamed(n, c.Name)
	} else {
		c.Table.AddIndex(c.Name)
	}
	return c
}

// References queues a foreign key from this column to table.column
func (c *Column) References(table, column string, name ...string) *Column {
	cols, related := []string{c.Name}, []string{column}
	if n := first(name); n != "" {
		c.fk = c.Table.AddForeignKeyNamed(n, cols, table, related)
	} else {
		c.fk = c.Table.AddForeignKey(cols, table, related)
	}
	return c
}

// OnDelete sets the delete propagation of the column's latest foreign key.
// It does nothing when References has not been called.
func (c *Column) OnDelete(p Propagation) *Column {
	if c.fk != nil {
		c.fk.OnDelete = p
	}
	return c
}
