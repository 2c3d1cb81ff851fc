// Package schema models the schema operations a migration queues up.
// Nothing in this package talks to a database; the sqlgen package renders
// the queued elements into SQL.
package schema

import "fmt"

// Modifier is the verb applied to an element.
type Modifier int

const (
	// Add creates the element.
	Add Modifier = iota
	// Alter changes an existing element.
	Alter
	// Drop removes the element.
	Drop
)

// String returns the lowercase name of the modifier
func (m Modifier) String() string {
	switch m {
	case Add:
		return "add"
	case Alter:
		return "alter"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("modifier(%d)", int(m))
	}
}

// Element is any operation queued into a Database.
// The set of elements is closed: only types in this package implement it.
type Element interface {
	base() *Base
}

// Base is the header shared by all elements
type Base struct {
	Name     string
	Modifier Modifier
}

func (b *Base) base() *Base { return b }

// NameOf returns the name of an element
func NameOf(e Element) string {
	return e.base().Name
}

// ModifierOf returns the modifier of an element
func ModifierOf(e Element) Modifier {
	return e.base().Modifier
}

// Kind returns a short human readable label for an element
func Kind(e Element) string {
	switch e.(type) {
	case *Table:
		return "table"
	case *PrimaryKeyConstraint:
		return "primary key"
	case *ForeignKeyConstraint:
		return "foreign key"
	case *UniqueConstraint:
		return "unique constraint"
	case *DefaultConstraint:
		return "default constraint"
	case *Constraint:
		return "constraint"
	case *Index:
		return "index"
	case *Insert:
		return "insert"
	case *Update:
		return "update"
	case *SQLStatement:
		return "sql"
	default:
		return "unknown"
	}
}
