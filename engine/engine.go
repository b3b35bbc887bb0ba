package engine

// Row is one result record, a mapping from column name to scalar value. Its
// shape is determined entirely by the query's projection; no static shape is
// imposed at this layer.
type Row map[string]any

// Result reports the outcome of a single run-type statement execution: the
// number of rows it affected and the identifier of the most recently
// inserted row, exactly as the engine reported them for that one call.
type Result struct {
	Changes      int64
	LastInsertID int64
}

// Reserved location markers understood by engine constructors.
const (
	// Memory selects a private in-memory database.
	Memory = ":memory:"

	// Anonymous selects an anonymous on-disk temporary database that the
	// engine removes when the handle closes.
	Anonymous = ""
)

// DoneFunc receives the completion of an operation with no result payload.
type DoneFunc func(err error)

// RunFunc receives the completion of a run-type operation.
type RunFunc func(res Result, err error)

// RowFunc receives one result row, or the error that terminated the scan.
// Exactly one of row and err is set.
type RowFunc func(row Row, err error)

// EachDoneFunc receives the completion of a row iteration with the number of
// rows delivered before it ended.
type EachDoneFunc func(count int64, err error)

// Handle is an open (or opening) connection to one physical database.
type Handle interface {
	// OnOpen registers fn to be invoked exactly once with the outcome of
	// the asynchronous open: nil on success, the open error otherwise. If
	// the open already completed, fn is invoked immediately.
	OnOpen(fn func(err error))

	// Run executes only the first statement in sql; any trailing
	// statements in the same text are dropped.
	Run(sql string, args []any, fn RunFunc)

	// Exec executes every semicolon-separated statement in sql to
	// completion. No per-statement counts are reported for a batch.
	Exec(sql string, fn DoneFunc)

	// Get executes sql and reports the first result row only, or a nil
	// row if the query produced none.
	Get(sql string, args []any, fn RowFunc)

	// Each executes sql and invokes row once per result row in result
	// order, then done once with the delivered row count. A scan error is
	// reported to row and terminates the iteration; done still fires.
	Each(sql string, args []any, row RowFunc, done EachDoneFunc)

	// Prepare requests compilation of sql and returns the statement
	// handle immediately; fn reports the compilation outcome
	// asynchronously. Operations issued on the returned Stmt before
	// compilation completes queue behind it.
	Prepare(sql string, fn DoneFunc) Stmt

	// Close releases the handle.
	Close(fn DoneFunc)
}

// Stmt is a compiled, parameter-templated statement owned by one Handle. Its
// statement text is fixed at Prepare time and never re-parsed.
type Stmt interface {
	Run(args []any, fn RunFunc)
	Get(args []any, fn RowFunc)
	Each(args []any, row RowFunc, done EachDoneFunc)

	// Reset returns the statement to its pre-execution state so it can be
	// re-invoked with new parameters without recompilation.
	Reset(fn DoneFunc)

	// Finalize releases the compiled statement. Operating on a finalized
	// statement is undefined engine behavior.
	Finalize(fn DoneFunc)
}
