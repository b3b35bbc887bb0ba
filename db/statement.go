package db

import (
	"context"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// Statement is a statement compiled once on its Connection and invoked
// repeatedly with different positional parameters without recompilation.
// The statement text is fixed at Prepare time.
//
// A Statement is only valid while its Connection is open. Operating on a
// finalized statement is undefined engine behavior, not guarded here.
type Statement struct {
	conn *Connection
	stmt engine.Stmt

	compiled   chan struct{} // closed once compilation resolved
	compileErr error
}

// ready suspends until compilation resolved and returns its error, if any.
// Every operation gates on this, which is how compilation failures surface
// on first use rather than from Prepare.
func (s *Statement) ready(ctx context.Context) error {
	select {
	case <-s.compiled:
		return s.compileErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the statement with args bound to its placeholders for this
// single invocation, reporting the per-call affected-row count and
// last-insert identifier.
func (s *Statement) Run(ctx context.Context, args ...any) (engine.Result, error) {
	if err := s.ready(ctx); err != nil {
		return engine.Result{}, err
	}
	done := make(chan runOutcome, 1)
	s.stmt.Run(args, func(res engine.Result, err error) {
		done <- runOutcome{res, err}
	})
	return awaitRun(ctx, done)
}

// Get executes the statement and returns the first result row only, or a
// nil row and no error if it produced none.
func (s *Statement) Get(ctx context.Context, args ...any) (engine.Row, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	done := make(chan rowOutcome, 1)
	s.stmt.Get(args, func(row engine.Row, err error) {
		done <- rowOutcome{row, err}
	})
	return awaitRow(ctx, done)
}

// Each returns a lazily-produced sequence of the statement's result rows
// for this parameter set, with the same contract as Connection.Each.
func (s *Statement) Each(ctx context.Context, args ...any) *Rows {
	return newRows(ctx, func(row engine.RowFunc, done engine.EachDoneFunc) error {
		if err := s.ready(ctx); err != nil {
			return err
		}
		s.stmt.Each(args, row, done)
		return nil
	})
}

// Reset returns the statement to its pre-execution state so it can be
// re-invoked with new parameters; it resolves once the engine confirms the
// reset.
func (s *Statement) Reset(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	done := make(chan error, 1)
	s.stmt.Reset(func(err error) { done <- err })
	return await(ctx, done)
}

// Finalize releases the compiled statement; it resolves once the engine
// confirms the release. Further operations on the statement are invalid.
func (s *Statement) Finalize(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	done := make(chan error, 1)
	s.stmt.Finalize(func(err error) { done <- err })
	return await(ctx, done)
}
