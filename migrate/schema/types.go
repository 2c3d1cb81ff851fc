package schema

import (
	"reflect"
	"strconv"
	"time"
)

// DataType is a database-neutral column type. Dialects map it to keywords.
type DataType int

const (
	// Unspecified leaves the column type untouched (used by altered columns).
	Unspecified DataType = iota
	Guid
	TinyInt
	SmallInt
	Int
	BigInt
	Single
	Double
	Decimal
	Currency
	Boolean
	Char
	VarChar
	VarCharMax
	NChar
	NVarChar
	NVarCharMax
	Text
	NText
	Xml
	Date
	Time
	DateTime
	TimeStamp
	TimeOffset
	Binary
	VarBinary
	VarBinaryMax
)

var dataTypeNames = map[DataType]string{
	Unspecified:  "Unspecified",
	Guid:         "Guid",
	TinyInt:      "TinyInt",
	SmallInt:     "SmallInt",
	Int:          "Int",
	BigInt:       "BigInt",
	Single:       "Single",
	Double:       "Double",
	Decimal:      "Decimal",
	Currency:     "Currency",
	Boolean:      "Boolean",
	Char:         "Char",
	VarChar:      "VarChar",
	VarCharMax:   "VarCharMax",
	NChar:        "NChar",
	NVarChar:     "NVarChar",
	NVarCharMax:  "NVarCharMax",
	Text:         "Text",
	NText:        "NText",
	Xml:          "Xml",
	Date:         "Date",
	Time:         "Time",
	DateTime:     "DateTime",
	TimeStamp:    "TimeStamp",
	TimeOffset:   "TimeOffset",
	Binary:       "Binary",
	VarBinary:    "VarBinary",
	VarBinaryMax: "VarBinaryMax",
}

// String returns the name of the data type
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return "DataType(" + strconv.Itoa(int(t)) + ")"
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bytesType    = reflect.TypeOf([]byte(nil))
	guidType     = reflect.TypeOf([16]byte{})
)

// TypeOf maps a Go value to the data type a column holding it would use.
// The second result is false for values without a natural column type.
func TypeOf(v any) (DataType, bool) {
	if v == nil {
		return Unspecified, false
	}
	return typeFor(reflect.TypeOf(v))
}

func typeFor(t reflect.Type) (DataType, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return DateTime, true
	case durationType:
		return TimeOffset, true
	case bytesType:
		return VarBinary, true
	case guidType:
		return Guid, true
	}

	switch t.Kind() {
	case reflect.String:
		return NVarChar, true
	case reflect.Bool:
		return Boolean, true
	case reflect.Int8, reflect.Uint8:
		return TinyInt, true
	case reflect.Int16, reflect.Uint16:
		return SmallInt, true
	case reflect.Int, reflect.Int32, reflect.Uint32:
		return Int, true
	case reflect.Int64, reflect.Uint, reflect.Uint64:
		return BigInt, true
	case reflect.Float32:
		return Single, true
	case reflect.Float64:
		return Double, true
	}
	return Unspecified, false
}
