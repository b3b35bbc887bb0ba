// Package sqlite implements the engine capability interface over an
// embedded SQLite database.
//
// Each Handle owns exactly one raw driver connection and a dispatch
// goroutine that executes all work for that connection serially. Operations
// enqueue a job and return immediately; the dispatch goroutine runs jobs in
// issuance order and invokes the operation's callbacks from that goroutine.
// A callback that blocks therefore suspends everything queued behind it,
// which is the acknowledgment mechanism the db package's row streaming
// relies on.
//
// Two SQLite drivers are supported, selected at build time:
//
//   - default: github.com/mattn/go-sqlite3 (CGO)
//   - -tags purego_sqlite: modernc.org/sqlite (pure Go)
//
// DriverName reports the database/sql driver name registered by the build,
// for callers that want to open a second, independent connection to the
// same database file through database/sql.
package sqlite
