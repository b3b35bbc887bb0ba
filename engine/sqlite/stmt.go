package sqlite

import (
	"database/sql/driver"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// Stmt is a compiled statement owned by one Handle. It implements
// engine.Stmt. All fields below the handle reference are touched only on
// the dispatch goroutine, which also guarantees that operations issued
// before compilation finished observe its outcome: the dispatch queue is
// FIFO and the compilation job runs first.
type Stmt struct {
	h   *Handle
	id  string
	sql string

	ps      driver.Stmt
	prepErr error
}

// ready returns the driver statement, or the reason it is unusable: a
// failed compilation, a closed handle, or a finalized statement.
func (s *Stmt) ready(c driver.Conn) (driver.Stmt, error) {
	if s.prepErr != nil {
		return nil, s.prepErr
	}
	if c == nil || s.ps == nil {
		return nil, errNotOpen()
	}
	return s.ps, nil
}

// Run executes the statement with args bound to its placeholders.
func (s *Stmt) Run(args []any, fn engine.RunFunc) {
	ok := s.h.enqueue(func(c driver.Conn) {
		ps, err := s.ready(c)
		if err != nil {
			fn(engine.Result{}, err)
			return
		}
		fn(stmtExec(ps, args))
	})
	if !ok {
		fn(engine.Result{}, errNotOpen())
	}
}

// Get executes the statement and reports the first result row, or a nil row
// if it produced none.
func (s *Stmt) Get(args []any, fn engine.RowFunc) {
	ok := s.h.enqueue(func(c driver.Conn) {
		ps, err := s.ready(c)
		if err != nil {
			fn(nil, err)
			return
		}
		fn(getScan(ps, args))
	})
	if !ok {
		fn(nil, errNotOpen())
	}
}

// Each executes the statement and pushes every result row through row, then
// invokes done with the delivered count.
func (s *Stmt) Each(args []any, row engine.RowFunc, done engine.EachDoneFunc) {
	ok := s.h.enqueue(func(c driver.Conn) {
		ps, err := s.ready(c)
		if err != nil {
			done(0, err)
			return
		}
		done(eachScan(ps, args, row))
	})
	if !ok {
		done(0, errNotOpen())
	}
}

// Reset returns the statement to its pre-execution state. Driver statements
// rebind on every execution and row cursors never outlive a dispatch job,
// so this resolves once the dispatch goroutine confirms the statement is
// live and idle.
func (s *Stmt) Reset(fn engine.DoneFunc) {
	ok := s.h.enqueue(func(c driver.Conn) {
		if _, err := s.ready(c); err != nil {
			fn(err)
			return
		}
		fn(nil)
	})
	if !ok {
		fn(errNotOpen())
	}
}

// Finalize releases the compiled statement. Finalizing twice resolves
// successfully; any other use after Finalize reports engine.CodeMisuse.
func (s *Stmt) Finalize(fn engine.DoneFunc) {
	ok := s.h.enqueue(func(c driver.Conn) {
		if s.prepErr != nil {
			fn(s.prepErr)
			return
		}
		if s.ps == nil {
			fn(nil)
			return
		}
		err := s.ps.Close()
		s.ps = nil
		delete(s.h.stmts, s.id)
		if s.h.log != nil {
			s.h.log.Debug("Finalized statement", "stmt", s.id)
		}
		fn(translateError(err))
	})
	if !ok {
		fn(errNotOpen())
	}
}
