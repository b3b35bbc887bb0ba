// Package engine defines the callback-based capability interface the
// asynchronous facade in package db is built on. An engine implementation
// (see engine/sqlite) hands out Handle objects that execute SQL and report
// every outcome through completion callbacks: one-shot callbacks for
// run/exec/get/close style operations, and a push-style row callback plus a
// completion callback for row iteration.
//
// The contract every implementation must honor:
//
//   - All callbacks for one Handle are delivered sequentially, from a single
//     dispatch goroutine, in the order the operations were issued.
//   - A row callback that blocks suspends delivery of the next row and of
//     every operation queued behind the running one. Consumers rely on this
//     to pace a push-based row stream with pull-based iteration.
//   - Errors are reported through the callback that the failing operation
//     was issued with, carrying the engine's original result code.
package engine
