package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Field is a single column/value pair of a Row.
type Field struct {
	Column string
	Value  any
}

// Row is an ordered set of column values. Column names are unique and
// insertion order is kept so rendered SQL is reproducible.
type Row []Field

// NewRow builds a row from alternating column names and values.
// It panics when kv has an odd length or a key is not a string.
func NewRow(kv ...any) Row {
	if len(kv)%2 != 0 {
		panic("schema: NewRow needs column/value pairs")
	}
	row := make(Row, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		column, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("schema: NewRow key %v is not a string", kv[i]))
		}
		row.Set(column, kv[i+1])
	}
	return row
}

// Set assigns value to column, replacing an existing value in place
func (r *Row) Set(column string, value any) {
	for i := range *r {
		if (*r)[i].Column == column {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Column: column, Value: value})
}

// Get returns the value stored for column
func (r Row) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names in order
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// RowFromMap converts a map into a row. Keys are sorted because map
// iteration order is random.
func RowFromMap(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(Row, 0, len(keys))
	for _, k := range keys {
		row = append(row, Field{Column: k, Value: m[k]})
	}
	return row
}

// RowFromStruct converts the exported fields of a struct into a row in
// declaration order. The `db` tag renames a column and `db:"-"` skips it.
func RowFromStruct(v any) (Row, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("schema: nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map {
		m, ok := rv.Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema: unsupported map type %T", v)
		}
		return RowFromMap(m), nil
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: expected struct, got %T", v)
	}

	rt := rv.Type()
	row := make(Row, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("db"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		row.Set(name, rv.Field(i).Interface())
	}
	return row, nil
}
