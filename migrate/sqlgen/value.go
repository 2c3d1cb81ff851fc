package sqlgen

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LiteralSQL is written into generated SQL as is, without quoting.
// Use it for expressions such as CURRENT_TIMESTAMP.
type LiteralSQL string

// FormatValue renders v as a SQL literal. Numbers use invariant
// formatting, times are quoted dates, booleans are 1 or 0 and anything
// else becomes a quoted string with embedded quotes doubled.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case LiteralSQL:
		return string(x)
	case time.Time:
		return formatTime(x)
	case []byte:
		return quoteString(string(x))
	case driver.Valuer:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "NULL"
		}
		if dv, err := x.Value(); err == nil {
			return FormatValue(dv)
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL"
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.Bool:
		if rv.Bool() {
			return "1"
		}
		return "0"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		return quoteString(rv.String())
	}

	if s, ok := v.(fmt.Stringer); ok {
		return quoteString(s.String())
	}
	return quoteString(fmt.Sprint(v))
}

func formatTime(t time.Time) string {
	switch {
	case t.Nanosecond() != 0:
		return "'" + t.Format("2006-01-02 15:04:05.000") + "'"
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return "'" + t.Format("2006-01-02") + "'"
	}
	return "'" + t.Format("2006-01-02 15:04:05") + "'"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
