package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/asyncsqlite/engine"
	"github.com/tomyedwab/asyncsqlite/engine/sqlite"
)

// setupConn opens a connection to a fresh file-backed test database.
func setupConn(t *testing.T) *Connection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn := Open(path)
	if err := conn.Connected(context.Background()); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	t.Cleanup(func() {
		conn.Close(context.Background())
	})
	return conn
}

func setupKVTable(t *testing.T, conn *Connection) {
	t.Helper()
	err := conn.Exec(context.Background(), "CREATE TABLE kv (id INTEGER PRIMARY KEY, key TEXT)")
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
}

func TestRunExecutesFirstStatementOnly(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	_, err := conn.Run(ctx, "INSERT INTO kv (key) VALUES ('foo'); INSERT INTO kv (key) VALUES ('bar')")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	row, err := conn.Get(ctx, "SELECT COUNT(*) AS n FROM kv")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if n := row["n"]; n != int64(1) {
		t.Errorf("Expected 1 row after Run (second statement dropped), got %v", n)
	}
}

func TestExecRunsAllStatements(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	err := conn.Exec(ctx, "INSERT INTO kv (key) VALUES ('foo'); INSERT INTO kv (key) VALUES ('bar')")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}

	row, err := conn.Get(ctx, "SELECT COUNT(*) AS n FROM kv")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if n := row["n"]; n != int64(2) {
		t.Errorf("Expected 2 rows after Exec, got %v", n)
	}
}

func TestRunReportsChangesAndLastInsertID(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	res, err := conn.Run(ctx, "INSERT INTO kv (key) VALUES ('foo')")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Changes != 1 {
		t.Errorf("Expected Changes 1, got %d", res.Changes)
	}
	if res.LastInsertID != 1 {
		t.Errorf("Expected LastInsertID 1, got %d", res.LastInsertID)
	}

	res, err = conn.Run(ctx, "INSERT INTO kv (key) VALUES ('bar')")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.LastInsertID != 2 {
		t.Errorf("Expected LastInsertID 2, got %d", res.LastInsertID)
	}

	res, err = conn.Run(ctx, "UPDATE kv SET key = 'baz'")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Changes != 2 {
		t.Errorf("Expected Changes 2 for the update, got %d", res.Changes)
	}
}

func TestGetReturnsFirstRowOnly(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	err := conn.Exec(ctx, "INSERT INTO kv (id, key) VALUES (1, 'foo'); INSERT INTO kv (id, key) VALUES (2, 'bar')")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}

	row, err := conn.Get(ctx, "SELECT id, key FROM kv ORDER BY id")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if row["id"] != int64(1) || row["key"] != "foo" {
		t.Errorf("Expected {id:1, key:foo}, got %v", row)
	}
}

func TestGetNoRows(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	row, err := conn.Get(ctx, "SELECT id, key FROM kv")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if row != nil {
		t.Errorf("Expected nil row for empty result, got %v", row)
	}
}

func TestEachYieldsRowsInOrder(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	err := conn.Exec(ctx, "INSERT INTO kv (id, key) VALUES (1, 'foo'); INSERT INTO kv (id, key) VALUES (2, 'bar')")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}

	rows := conn.Each(ctx, "SELECT id, key FROM kv ORDER BY id")
	defer rows.Close()

	want := []engine.Row{
		{"id": int64(1), "key": "foo"},
		{"id": int64(2), "key": "bar"},
	}
	i := 0
	for rows.Next() {
		if i >= len(want) {
			t.Fatalf("Got more rows than expected: %v", rows.Row())
		}
		row := rows.Row()
		if row["id"] != want[i]["id"] || row["key"] != want[i]["key"] {
			t.Errorf("Row %d: expected %v, got %v", i, want[i], row)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if i != len(want) {
		t.Errorf("Expected %d rows, got %d", len(want), i)
	}
}

func TestConnectedCantOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "test.db")
	conn := Open(path)
	err := conn.Connected(context.Background())
	if err == nil {
		t.Fatal("Expected Connected to fail for a nonexistent nested path")
	}
	if !engine.IsCantOpen(err) {
		t.Errorf("Expected a cannot-open engine code, got code %d (%v)", engine.ErrCode(err), err)
	}
}

func TestConnectedInjectedHandle(t *testing.T) {
	// The fake never emits an open event; Connected must not wait for one.
	conn := New(&fakeHandle{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected on an injected handle returned error: %v", err)
	}
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	conn := OpenMemory()
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	defer conn.Close(ctx)

	setupKVTable(t, conn)
	if _, err := conn.Run(ctx, "INSERT INTO kv (key) VALUES ('foo')"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestOpenTemp(t *testing.T) {
	ctx := context.Background()
	conn := OpenTemp()
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	defer conn.Close(ctx)

	setupKVTable(t, conn)
	if _, err := conn.Run(ctx, "INSERT INTO kv (key) VALUES ('foo')"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	conn := Open(path)
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Fatalf("First Close returned error: %v", err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Fatalf("Second Close returned error: %v", err)
	}
}

func TestOperationsAfterCloseReportMisuse(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	conn := Open(path)
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	_, err := conn.Run(ctx, "SELECT 1")
	if !engine.IsMisuse(err) {
		t.Errorf("Expected a misuse engine code after close, got %v", err)
	}
}

func TestWritesVisibleThroughSQLX(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cross.db")
	conn := Open(path)
	if err := conn.Connected(ctx); err != nil {
		t.Fatalf("Connected returned error: %v", err)
	}
	setupKVTable(t, conn)
	err := conn.Exec(ctx, "INSERT INTO kv (id, key) VALUES (1, 'foo'); INSERT INTO kv (id, key) VALUES (2, 'bar')")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// Verify through an independent connection.
	sdb := sqlx.MustConnect(sqlite.DriverName, path)
	defer sdb.Close()
	var keys []string
	if err := sdb.Select(&keys, "SELECT key FROM kv ORDER BY id"); err != nil {
		t.Fatalf("sqlx select failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "foo" || keys[1] != "bar" {
		t.Errorf("Expected [foo bar], got %v", keys)
	}
}

type sqlWrapper struct {
	text string
}

func (s sqlWrapper) String() string { return s.text }

func TestRunAcceptsStringLikeSQL(t *testing.T) {
	ctx := context.Background()
	conn := setupConn(t)
	setupKVTable(t, conn)

	_, err := conn.Run(ctx, sqlWrapper{text: "INSERT INTO kv (key) VALUES ('foo')"})
	if err != nil {
		t.Fatalf("Run with a Stringer SQL value returned error: %v", err)
	}
	row, err := conn.Get(ctx, []byte("SELECT COUNT(*) AS n FROM kv"))
	if err != nil {
		t.Fatalf("Get with a []byte SQL value returned error: %v", err)
	}
	if row["n"] != int64(1) {
		t.Errorf("Expected count 1, got %v", row["n"])
	}
}
