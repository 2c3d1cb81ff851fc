package schema

// Index is a non-unique index on a table
type Index struct {
	Base
	Table   *Table
	Columns []string
}

// Insert adds one row to a table
type Insert struct {
	Base
	Table *Table
	Row   Row
}

// Update changes the rows matching Where. Its modifier is always Alter.
type Update struct {
	Base
	Table *Table
	Set   Row
	Where Row
}

// SQLStatement is raw SQL passed through untouched. Its modifier is always Add.
type SQLStatement struct {
	Base
	SQL string
}
