package db

import (
	"context"
	"sync"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// rowItem is one handoff from the engine's push callback to the consumer.
// Exactly one of row and err is set.
type rowItem struct {
	row engine.Row
	err error
}

// Rows is a lazily-produced, finite, forward-only sequence of result rows.
//
// The engine pushes rows eagerly, but Rows holds at most one in-flight row:
// after handing a row over, the engine's row callback stays suspended on a
// pending acknowledgment that the consumer sends only when it pulls the
// next row, so production is paced by consumption and delivery order is
// preserved. A Rows is not restartable; call Each again to re-execute the
// query.
//
// A Rows is for use by a single goroutine. Close must be called whenever
// iteration stops before Next has returned false, otherwise the engine's
// dispatch goroutine stays suspended on the handoff. After an error or
// normal completion, Close is unnecessary but harmless.
type Rows struct {
	ctx   context.Context
	start func(row engine.RowFunc, done engine.EachDoneFunc) error

	items chan rowItem  // one-slot handoff from the engine push callback
	ack   chan struct{} // consumer's pull request for the next row
	stop  chan struct{} // closed on Close/failure; discards further pushes
	once  sync.Once

	started  bool
	finished bool
	awaiting bool // the producer is suspended on an acknowledgment
	cur      engine.Row
	err      error

	// pushedErr records that the row callback already delivered a scan
	// error, so the completion callback must not deliver it again. Touched
	// only on the engine's dispatch goroutine.
	pushedErr bool
}

func newRows(ctx context.Context, start func(engine.RowFunc, engine.EachDoneFunc) error) *Rows {
	return &Rows{
		ctx:   ctx,
		start: start,
		items: make(chan rowItem, 1),
		ack:   make(chan struct{}),
		stop:  make(chan struct{}),
	}
}

// Next suspends the caller until the engine delivers the next row, the
// sequence completes, or the iteration context is done. It reports whether
// a row is available via Row. When Next returns false, Err distinguishes
// normal completion from a failed iteration; rows delivered before a
// failure are preserved.
func (r *Rows) Next() bool {
	if r.finished {
		return false
	}
	if !r.started {
		r.started = true
		if err := r.begin(); err != nil {
			return r.fail(err)
		}
	}
	if r.awaiting {
		// The previous row is processed; let the engine produce the next.
		r.awaiting = false
		select {
		case r.ack <- struct{}{}:
		case <-r.ctx.Done():
			return r.fail(r.ctx.Err())
		}
	}
	select {
	case item, ok := <-r.items:
		if !ok {
			r.finished = true
			r.release()
			return false
		}
		if item.err != nil {
			return r.fail(item.err)
		}
		r.cur = item.row
		r.awaiting = true
		return true
	case <-r.ctx.Done():
		return r.fail(r.ctx.Err())
	}
}

// Row returns the row made available by the last successful Next call.
func (r *Rows) Row() engine.Row {
	return r.cur
}

// Err returns the error that terminated the sequence, if any. It is nil
// after normal completion.
func (r *Rows) Err() error {
	return r.err
}

// Close stops delivery. The engine cannot cancel a query it already
// started, so any rows it still pushes are discarded without suspending its
// dispatch goroutine. Close is idempotent; a closed Rows yields no further
// rows.
func (r *Rows) Close() error {
	r.finished = true
	r.started = true // a never-started sequence stays unexecuted
	r.release()
	return nil
}

// begin issues the query. Each engine push deposits one item and then
// suspends until the consumer acknowledges it by pulling again; once r.stop
// closes, pushes are discarded and nothing suspends.
func (r *Rows) begin() error {
	return r.start(
		func(row engine.Row, err error) {
			if err != nil {
				// A scan error terminates the sequence; no acknowledgment
				// is coming, and the completion callback will carry the
				// same error again.
				r.pushedErr = true
			}
			select {
			case r.items <- rowItem{row: row, err: err}:
			case <-r.stop:
				return
			}
			if err == nil {
				select {
				case <-r.ack:
				case <-r.stop:
				}
			}
		},
		func(count int64, err error) {
			if err != nil && !r.pushedErr {
				// Covers failures that never produced a row push, such as
				// a query that failed to compile.
				select {
				case r.items <- rowItem{err: err}:
				case <-r.stop:
				}
			}
			close(r.items)
		},
	)
}

func (r *Rows) fail(err error) bool {
	r.err = err
	r.finished = true
	r.release()
	return false
}

func (r *Rows) release() {
	r.once.Do(func() { close(r.stop) })
}
