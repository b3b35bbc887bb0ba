package sqlite

import (
	"database/sql/driver"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// job is one unit of work executed on the dispatch goroutine. The driver
// connection is nil once the handle is closed or if the open failed.
type job func(c driver.Conn)

// Handle is a callback-based connection to one SQLite database. It
// implements engine.Handle.
type Handle struct {
	log  *slog.Logger
	jobs chan job

	// stmts is the registry of live prepared statements, keyed by their
	// uuid tag. Touched only on the dispatch goroutine.
	stmts map[string]driver.Stmt

	mu     sync.Mutex
	closed bool

	openMu   sync.Mutex
	opened   bool
	openErr  error
	openSubs []func(error)
}

// Option configures a Handle.
type Option func(*Handle)

// WithLogger attaches a structured logger for statement-level debug logging.
// Handles are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) { h.log = l }
}

// Open starts a handle for the database at location and returns immediately;
// the open itself happens on the dispatch goroutine and reports through
// OnOpen. The reserved markers engine.Memory and engine.Anonymous select a
// private in-memory database and an anonymous on-disk temporary database.
//
// If the open fails, the handle stays unusable: every subsequent operation
// completes with an engine.CodeMisuse error, while OnOpen delivers the
// original open error.
func Open(location string, opts ...Option) *Handle {
	h := &Handle{
		jobs:  make(chan job, 16),
		stmts: make(map[string]driver.Stmt),
	}
	for _, o := range opts {
		o(h)
	}
	go h.dispatch(location)
	return h
}

func (h *Handle) dispatch(location string) {
	c, err := openDriverConn(location)
	if err != nil {
		c = nil
	}
	h.resolveOpen(translateError(err))
	for j := range h.jobs {
		j(c)
	}
}

// enqueue schedules j on the dispatch goroutine. It reports false if the
// handle has been closed, in which case j will never run.
func (h *Handle) enqueue(j job) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.jobs <- j
	return true
}

func (h *Handle) resolveOpen(err error) {
	h.openMu.Lock()
	h.opened = true
	h.openErr = err
	subs := h.openSubs
	h.openSubs = nil
	h.openMu.Unlock()
	for _, fn := range subs {
		fn(err)
	}
}

// OnOpen implements engine.Handle.
func (h *Handle) OnOpen(fn func(err error)) {
	h.openMu.Lock()
	if !h.opened {
		h.openSubs = append(h.openSubs, fn)
		h.openMu.Unlock()
		return
	}
	err := h.openErr
	h.openMu.Unlock()
	fn(err)
}

// Run executes only the first statement in sql. Trailing statements after
// the first are dropped, matching single-statement compilation semantics of
// the underlying engine.
func (h *Handle) Run(sql string, args []any, fn engine.RunFunc) {
	ok := h.enqueue(func(c driver.Conn) {
		if c == nil {
			fn(engine.Result{}, errNotOpen())
			return
		}
		fn(runFirst(c, sql, args))
	})
	if !ok {
		fn(engine.Result{}, errNotOpen())
	}
}

// Exec executes every semicolon-separated statement in sql to completion.
func (h *Handle) Exec(sql string, fn engine.DoneFunc) {
	ok := h.enqueue(func(c driver.Conn) {
		if c == nil {
			fn(errNotOpen())
			return
		}
		fn(execAll(c, sql))
	})
	if !ok {
		fn(errNotOpen())
	}
}

// Get executes sql and reports the first result row, or a nil row if the
// query produced none.
func (h *Handle) Get(sql string, args []any, fn engine.RowFunc) {
	ok := h.enqueue(func(c driver.Conn) {
		if c == nil {
			fn(nil, errNotOpen())
			return
		}
		ps, err := c.Prepare(sql)
		if err != nil {
			fn(nil, translateError(err))
			return
		}
		defer ps.Close()
		fn(getScan(ps, args))
	})
	if !ok {
		fn(nil, errNotOpen())
	}
}

// Each executes sql and pushes every result row through row, in result
// order, then invokes done with the delivered count. A scan error is
// delivered to row and ends the iteration; done fires with the same error.
func (h *Handle) Each(sql string, args []any, row engine.RowFunc, done engine.EachDoneFunc) {
	ok := h.enqueue(func(c driver.Conn) {
		if c == nil {
			done(0, errNotOpen())
			return
		}
		ps, err := c.Prepare(sql)
		if err != nil {
			done(0, translateError(err))
			return
		}
		defer ps.Close()
		done(eachScan(ps, args, row))
	})
	if !ok {
		done(0, errNotOpen())
	}
}

// Prepare requests compilation of sql and returns the statement handle
// immediately. fn reports the compilation outcome once the dispatch
// goroutine reaches it; operations issued on the returned statement in the
// meantime queue behind the compilation.
func (h *Handle) Prepare(sql string, fn engine.DoneFunc) engine.Stmt {
	s := &Stmt{h: h, id: uuid.NewString(), sql: sql}
	ok := h.enqueue(func(c driver.Conn) {
		if c == nil {
			s.prepErr = errNotOpen()
			fn(s.prepErr)
			return
		}
		ps, err := c.Prepare(sql)
		if err != nil {
			s.prepErr = translateError(err)
			fn(s.prepErr)
			return
		}
		s.ps = ps
		h.stmts[s.id] = ps
		if h.log != nil {
			h.log.Debug("Prepared statement", "stmt", s.id, "sql", sql)
		}
		fn(nil)
	})
	if !ok {
		s.prepErr = errNotOpen()
		fn(s.prepErr)
	}
	return s
}

// Close finalizes any statements still registered, closes the driver
// connection and shuts down the dispatch goroutine. Closing an
// already-closed handle resolves successfully without touching the engine.
func (h *Handle) Close(fn engine.DoneFunc) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		fn(nil)
		return
	}
	h.closed = true
	h.jobs <- func(c driver.Conn) {
		for id, ps := range h.stmts {
			ps.Close()
			delete(h.stmts, id)
		}
		if c == nil {
			fn(nil)
			return
		}
		fn(translateError(c.Close()))
	}
	close(h.jobs)
	h.mu.Unlock()
}

func errNotOpen() *engine.Error {
	return &engine.Error{Code: engine.CodeMisuse, Message: "sqlite: database handle is not open"}
}

// translateError maps a driver error into an engine.Error, preserving the
// engine's result code. Errors that are already engine errors pass through
// untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var eng *engine.Error
	if errors.As(err, &eng) {
		return eng
	}
	if code, extended, msg, ok := driverError(err); ok {
		return &engine.Error{Code: code, Extended: extended, Message: msg}
	}
	return &engine.Error{Code: engine.CodeError, Message: err.Error()}
}
