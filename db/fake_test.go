package db

import (
	"sync/atomic"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// fakeHandle is a scripted engine handle for exercising the facade protocol
// without a real database. It honors the engine contract: callbacks for one
// operation are delivered sequentially from a single goroutine, and a row
// callback that blocks suspends delivery of the next row.
//
// It never emits an open event, which is exactly the situation New exists
// for.
type fakeHandle struct {
	rows    []engine.Row
	failAt  int   // 1-based row index at which the scan fails; 0 disables
	scanErr error // delivered at failAt

	runRes engine.Result
	runErr error
	getRow engine.Row

	// prepGate, when non-nil, holds compilation unresolved until closed.
	prepGate chan struct{}
	prepErr  error

	// eachStall, when non-nil, makes Each produce nothing until closed.
	eachStall chan struct{}

	// delivered counts row callbacks that have fully returned, i.e. rows
	// the consumer has both pulled and acknowledged.
	delivered  atomic.Int64
	closeCalls atomic.Int64

	stmt *fakeStmt
}

func (f *fakeHandle) OnOpen(fn func(err error)) {
	// No open event is ever emitted for this handle.
}

func (f *fakeHandle) Run(sql string, args []any, fn engine.RunFunc) {
	fn(f.runRes, f.runErr)
}

func (f *fakeHandle) Exec(sql string, fn engine.DoneFunc) {
	fn(f.runErr)
}

func (f *fakeHandle) Get(sql string, args []any, fn engine.RowFunc) {
	fn(f.getRow, f.runErr)
}

func (f *fakeHandle) Each(sql string, args []any, row engine.RowFunc, done engine.EachDoneFunc) {
	go func() {
		if f.eachStall != nil {
			<-f.eachStall
			done(0, nil)
			return
		}
		var n int64
		for i, r := range f.rows {
			if f.failAt == i+1 {
				row(nil, f.scanErr)
				done(n, f.scanErr)
				return
			}
			row(r, nil)
			f.delivered.Add(1)
			n++
		}
		done(n, nil)
	}()
}

func (f *fakeHandle) Prepare(sql string, fn engine.DoneFunc) engine.Stmt {
	f.stmt = &fakeStmt{h: f}
	if f.prepGate != nil {
		go func() {
			<-f.prepGate
			fn(f.prepErr)
		}()
	} else {
		fn(f.prepErr)
	}
	return f.stmt
}

func (f *fakeHandle) Close(fn engine.DoneFunc) {
	f.closeCalls.Add(1)
	fn(nil)
}

type fakeStmt struct {
	h *fakeHandle

	runCalls      atomic.Int64
	resetCalls    atomic.Int64
	finalizeCalls atomic.Int64
}

func (s *fakeStmt) Run(args []any, fn engine.RunFunc) {
	s.runCalls.Add(1)
	fn(s.h.runRes, s.h.runErr)
}

func (s *fakeStmt) Get(args []any, fn engine.RowFunc) {
	fn(s.h.getRow, s.h.runErr)
}

func (s *fakeStmt) Each(args []any, row engine.RowFunc, done engine.EachDoneFunc) {
	s.h.Each("", args, row, done)
}

func (s *fakeStmt) Reset(fn engine.DoneFunc) {
	s.resetCalls.Add(1)
	fn(nil)
}

func (s *fakeStmt) Finalize(fn engine.DoneFunc) {
	s.finalizeCalls.Add(1)
	fn(nil)
}
