package schema

// Propagation is the referential action of a foreign key on delete.
type Propagation int

const (
	// Restrict rejects deleting referenced rows (database default).
	Restrict Propagation = iota
	// Cascade deletes referencing rows.
	Cascade
	// Nullify sets referencing columns to NULL.
	Nullify
)

// String returns the name of the propagation policy
func (p Propagation) String() string {
	switch p {
	case Cascade:
		return "cascade"
	case Nullify:
		return "nullify"
	default:
		return "restrict"
	}
}

// Constraint is a table constraint. A bare *Constraint is only ever
// dropped by name; the typed variants below embed it.
type Constraint struct {
	Base
	Table   *Table
	Columns []string
}

// PrimaryKeyConstraint is a table's primary key
type PrimaryKeyConstraint struct {
	Constraint
}

// ForeignKeyConstraint references columns of another table
type ForeignKeyConstraint struct {
	Constraint
	RelatedTable   string
	RelatedColumns []string
	OnDelete       Propagation
}

// Restrict sets the delete propagation to Restrict
func (fk *ForeignKeyConstraint) Restrict() *ForeignKeyConstraint {
	fk.OnDelete = Restrict
	return fk
}

// Cascade sets the delete propagation to Cascade
func (fk *ForeignKeyConstraint) Cascade() *ForeignKeyConstraint {
	fk.OnDelete = Cascade
	return fk
}

// Nullify sets the delete propagation to Nullify
func (fk *ForeignKeyConstraint) Nullify() *ForeignKeyConstraint {
	fk.OnDelete = Nullify
	return fk
}

// UniqueConstraint enforces distinct values across its columns
type UniqueConstraint struct {
	Constraint
}

// DefaultConstraint gives a column a default value
type DefaultConstraint struct {
	Constraint
	Column string
	Value  any
}
