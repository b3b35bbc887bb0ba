//go:build !purego_sqlite

// CGO SQLite driver using mattn/go-sqlite3. This is the default build;
// select the pure Go driver with -tags purego_sqlite.
package sqlite

import (
	"database/sql/driver"
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver name registered by this build.
const DriverName = "sqlite3"

func openDriverConn(location string) (driver.Conn, error) {
	return (&sqlite3.SQLiteDriver{}).Open(location)
}

func driverError(err error) (code, extended int, msg string, ok bool) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return 0, 0, "", false
	}
	return int(serr.Code), int(serr.ExtendedCode), serr.Error(), true
}
