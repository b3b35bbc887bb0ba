package engine

import "errors"

// Primary SQLite result codes surfaced in Error.Code. Callers branch on
// these to distinguish failure classes; the facade never rewrites them.
const (
	CodeError      = 1  // generic SQL or runtime error
	CodeInternal   = 2  // internal malfunction
	CodePerm       = 3  // access permission denied
	CodeAbort      = 4  // callback requested abort
	CodeBusy       = 5  // database file is locked
	CodeLocked     = 6  // a table is locked
	CodeNoMem      = 7  // out of memory
	CodeReadOnly   = 8  // attempt to write a readonly database
	CodeInterrupt  = 9  // operation interrupted
	CodeIOErr      = 10 // disk I/O error
	CodeCorrupt    = 11 // database image is malformed
	CodeNotFound   = 12 // unknown opcode or internal object
	CodeFull       = 13 // database or disk full
	CodeCantOpen   = 14 // unable to open the database file
	CodeProtocol   = 15 // locking protocol error
	CodeSchema     = 17 // schema changed under a statement
	CodeTooBig     = 18 // string or blob exceeds size limit
	CodeConstraint = 19 // constraint violation
	CodeMismatch   = 20 // data type mismatch
	CodeMisuse     = 21 // API used out of sequence
	CodeRange      = 25 // bind parameter index out of range
)

// Error is an engine-reported failure. The code is the engine's own result
// code, passed through to the caller unmodified; Extended carries the
// engine's extended code when one was reported.
type Error struct {
	Code     int
	Extended int
	Message  string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrCode returns the engine result code carried by err, or 0 if err is not
// an engine error.
func ErrCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsCantOpen reports whether err is an engine error indicating the database
// file could not be opened.
func IsCantOpen(err error) bool {
	return ErrCode(err) == CodeCantOpen
}

// IsConstraint reports whether err is an engine constraint violation.
func IsConstraint(err error) bool {
	return ErrCode(err) == CodeConstraint
}

// IsMisuse reports whether err is an engine lifecycle-misuse error, such as
// operating on a closed handle or a finalized statement.
func IsMisuse(err error) bool {
	return ErrCode(err) == CodeMisuse
}
