package schema

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Namer derives constraint and index names when a migration leaves them out.
// Implementations must be pure: the same input always yields the same name.
type Namer interface {
	PrimaryKeyName(table string, columns []string) string
	ForeignKeyName(table string, columns []string, relatedTable string, relatedColumns []string) string
	UniqueName(table string, columns []string) string
	IndexName(table string, columns []string) string
	DefaultName(table, column string) string
}

// DefaultNamer builds PK_, FK_, UQ_, IX_ and DF_ prefixed names.
// Names longer than MaxLength are shortened; zero means unlimited.
type DefaultNamer struct {
	MaxLength int
}

var _ Namer = DefaultNamer{}

// PrimaryKeyName returns PK_<table>
func (n DefaultNamer) PrimaryKeyName(table string, _ []string) string {
	return n.fit("PK_" + table)
}

// ForeignKeyName returns FK_<table>_<relatedTable>
func (n DefaultNamer) ForeignKeyName(table string, _ []string, relatedTable string, _ []string) string {
	return n.fit("FK_" + table + "_" + relatedTable)
}

// UniqueName returns UQ_<table>_<columns>
func (n DefaultNamer) UniqueName(table string, columns []string) string {
	return n.fit("UQ_" + table + "_" + strings.Join(columns, ""))
}

// IndexName returns IX_<table>_<columns>
func (n DefaultNamer) IndexName(table string, columns []string) string {
	return n.fit("IX_" + table + "_" + strings.Join(columns, ""))
}

// DefaultName returns DF_<table>_<column>
func (n DefaultNamer) DefaultName(table, column string) string {
	return n.fit("DF_" + table + "_" + column)
}

// fit truncates long names and appends a hash of the full name so two long
// names sharing a prefix do not collide.
func (n DefaultNamer) fit(name string) string {
	if n.MaxLength <= 0 || len(name) <= n.MaxLength {
		return name
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	suffix := fmt.Sprintf("_%08x", h.Sum32())

	keep := n.MaxLength - len(suffix)
	if keep < 1 {
		return suffix[1:]
	}
	return name[:keep] + suffix
}
