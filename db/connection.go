package db

import (
	"context"

	"github.com/tomyedwab/asyncsqlite/engine"
	"github.com/tomyedwab/asyncsqlite/engine/sqlite"
)

// Connection owns the lifecycle of one engine handle. The handle is set at
// construction and never replaced; no two Connections share a handle.
type Connection struct {
	h       engine.Handle
	opened  chan struct{} // closed once the open outcome is known
	openErr error         // written once, before opened closes
}

// Open opens a database at the given location and returns immediately; the
// open is asynchronous and its outcome is reported by Connected. The
// reserved markers engine.Memory and engine.Anonymous select a private
// in-memory database and an anonymous on-disk temporary database; any other
// location is a filesystem path.
func Open(location string) *Connection {
	c := &Connection{h: sqlite.Open(location), opened: make(chan struct{})}
	c.h.OnOpen(func(err error) {
		c.openErr = err
		close(c.opened)
	})
	return c
}

// OpenMemory returns a Connection opened against a private in-memory
// database.
func OpenMemory() *Connection {
	return Open(engine.Memory)
}

// OpenTemp returns a Connection opened against an anonymous on-disk
// temporary database.
func OpenTemp() *Connection {
	return Open(engine.Anonymous)
}

// New wraps an already-open engine handle. Ownership of lifecycle events is
// not claimed: the handle is treated as viable and Connected resolves
// immediately, since no open event is guaranteed for externally supplied
// handles.
func New(h engine.Handle) *Connection {
	opened := make(chan struct{})
	close(opened)
	return &Connection{h: h, opened: opened}
}

// Connected suspends the caller until the handle reports a successful open,
// or returns the engine's open error with its code preserved verbatim.
func (c *Connection) Connected(ctx context.Context) error {
	select {
	case <-c.opened:
		return c.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close asks the engine to close the handle and suspends until closing
// completes. Close is idempotent only to the extent the engine permits;
// calling it twice is not guarded at this layer.
func (c *Connection) Close(ctx context.Context) error {
	done := make(chan error, 1)
	c.h.Close(func(err error) { done <- err })
	return await(ctx, done)
}

// Run coerces sql to its string form and executes only the first statement
// in it; any additional statements in the same text are dropped by the
// engine, and that truncation is preserved here. The result carries the
// engine's per-call affected-row count and last-insert identifier for that
// single statement.
func (c *Connection) Run(ctx context.Context, sql any, args ...any) (engine.Result, error) {
	done := make(chan runOutcome, 1)
	c.h.Run(sqlText(sql), args, func(res engine.Result, err error) {
		done <- runOutcome{res, err}
	})
	return awaitRun(ctx, done)
}

// Exec coerces sql to its string form and executes every semicolon-
// separated statement in it to completion. Unlike Run, no statement is
// dropped; the engine reports no count or identifier payload for a batch.
func (c *Connection) Exec(ctx context.Context, sql any) error {
	done := make(chan error, 1)
	c.h.Exec(sqlText(sql), func(err error) { done <- err })
	return await(ctx, done)
}

// Get executes sql and returns the first result row only, or a nil row and
// no error if the query produced none.
func (c *Connection) Get(ctx context.Context, sql any, args ...any) (engine.Row, error) {
	done := make(chan rowOutcome, 1)
	c.h.Get(sqlText(sql), args, func(row engine.Row, err error) {
		done <- rowOutcome{row, err}
	})
	return awaitRow(ctx, done)
}

// Each returns a lazily-produced, finite, forward-only sequence of the
// query's result rows. The query executes on the first Next call; a fresh
// Each re-executes it. See Rows for the iteration contract.
func (c *Connection) Each(ctx context.Context, sql any, args ...any) *Rows {
	return newRows(ctx, func(row engine.RowFunc, done engine.EachDoneFunc) error {
		c.h.Each(sqlText(sql), args, row, done)
		return nil
	})
}

// Prepare requests compilation of sql immediately and returns the new
// Statement immediately, without awaiting compilation. Compilation errors
// surface on the statement's first use, not from Prepare.
func (c *Connection) Prepare(sql any) *Statement {
	s := &Statement{conn: c, compiled: make(chan struct{})}
	s.stmt = c.h.Prepare(sqlText(sql), func(err error) {
		s.compileErr = err
		close(s.compiled)
	})
	return s
}

type runOutcome struct {
	res engine.Result
	err error
}

type rowOutcome struct {
	row engine.Row
	err error
}

// await suspends the caller until the engine's one-shot completion callback
// delivers, or the context abandons the wait. Abandoning never cancels the
// in-flight engine operation.
func await(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func awaitRun(ctx context.Context, done <-chan runOutcome) (engine.Result, error) {
	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return engine.Result{}, ctx.Err()
	}
}

func awaitRow(ctx context.Context, done <-chan rowOutcome) (engine.Row, error) {
	select {
	case out := <-done:
		return out.row, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
