package executor

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
)

// Driver error codes for "table already exists" and "table does not exist".
const (
	mysqlTableExists    = 1050
	mysqlNoSuchTable    = 1146
	pgDuplicateTable    = "42P07"
	pgUndefinedTable    = "42P01"
	mssqlObjectExists   = 2714
	mssqlInvalidObject  = 208
	sqliteExistsMessage = "already exists"
	sqliteNoSuchTable   = "no such table"
)

// IsAlreadyExists reports whether err is a driver error saying the object
// being created exists already.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlTableExists
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgDuplicateTable
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == mssqlObjectExists
	}
	return isSQLiteError(err, sqliteExistsMessage)
}

// IsUndefinedTable reports whether err is a driver error saying the
// queried table does not exist.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == mssqlInvalidObject
	}
	return isSQLiteError(err, sqliteNoSuchTable)
}

// isSQLiteError matches on the message: sqlite3.Error carries only the
// generic SQLITE_ERROR code for both cases.
func isSQLiteError(err error, fragment string) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, fragment) && strings.Contains(msg, "table")
}
