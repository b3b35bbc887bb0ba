//go:build purego_sqlite

// Pure Go SQLite driver using modernc.org/sqlite.
//
// Build with: go build -tags purego_sqlite
package sqlite

import (
	"database/sql/driver"
	"errors"

	modernc "modernc.org/sqlite"
)

// DriverName is the database/sql driver name registered by this build.
const DriverName = "sqlite"

func openDriverConn(location string) (driver.Conn, error) {
	return (&modernc.Driver{}).Open(location)
}

func driverError(err error) (code, extended int, msg string, ok bool) {
	var serr *modernc.Error
	if !errors.As(err, &serr) {
		return 0, 0, "", false
	}
	c := serr.Code()
	return c & 0xff, c, serr.Error(), true
}
