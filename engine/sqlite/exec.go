package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/tomyedwab/asyncsqlite/engine"
)

// runFirst prepares sql and executes only the first statement in it,
// reporting the per-call affected-row count and last-insert identifier.
func runFirst(c driver.Conn, sql string, args []any) (engine.Result, error) {
	ps, err := c.Prepare(sql)
	if err != nil {
		return engine.Result{}, translateError(err)
	}
	defer ps.Close()
	return stmtExec(ps, args)
}

// execAll executes every statement in sql through the driver's batch
// execution path.
func execAll(c driver.Conn, sql string) error {
	if ec, ok := c.(driver.ExecerContext); ok {
		_, err := ec.ExecContext(context.Background(), sql, nil)
		if err != driver.ErrSkip {
			return translateError(err)
		}
	}
	if e, ok := c.(driver.Execer); ok {
		_, err := e.Exec(sql, nil)
		if err != driver.ErrSkip {
			return translateError(err)
		}
	}
	return &engine.Error{Code: engine.CodeMisuse, Message: "sqlite: driver does not support batch execution"}
}

// stmtExec executes a prepared driver statement with args bound to its
// positional placeholders.
func stmtExec(ps driver.Stmt, args []any) (engine.Result, error) {
	nv, err := namedValues(args)
	if err != nil {
		return engine.Result{}, err
	}
	var dres driver.Result
	if ec, ok := ps.(driver.StmtExecContext); ok {
		dres, err = ec.ExecContext(context.Background(), nv)
	} else {
		dres, err = ps.Exec(plainValues(nv))
	}
	if err != nil {
		return engine.Result{}, translateError(err)
	}
	var res engine.Result
	if id, err := dres.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	if n, err := dres.RowsAffected(); err == nil {
		res.Changes = n
	}
	return res, nil
}

func stmtQuery(ps driver.Stmt, args []any) (driver.Rows, error) {
	nv, err := namedValues(args)
	if err != nil {
		return nil, err
	}
	if qc, ok := ps.(driver.StmtQueryContext); ok {
		rows, err := qc.QueryContext(context.Background(), nv)
		return rows, translateError(err)
	}
	rows, err := ps.Query(plainValues(nv))
	return rows, translateError(err)
}

// getScan executes ps and returns the first result row only, or a nil row
// if the query produced none.
func getScan(ps driver.Stmt, args []any) (engine.Row, error) {
	rows, err := stmtQuery(ps, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := rows.Columns()
	dest := make([]driver.Value, len(cols))
	if err := rows.Next(dest); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return rowValue(cols, dest), nil
}

// eachScan executes ps and pushes every result row through row. A scan
// error is delivered to row before eachScan returns it.
func eachScan(ps driver.Stmt, args []any, row engine.RowFunc) (int64, error) {
	rows, err := stmtQuery(ps, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols := rows.Columns()
	dest := make([]driver.Value, len(cols))
	var n int64
	for {
		if err := rows.Next(dest); err != nil {
			if err == io.EOF {
				return n, nil
			}
			terr := translateError(err)
			row(nil, terr)
			return n, terr
		}
		row(rowValue(cols, dest), nil)
		n++
	}
}

func rowValue(cols []string, dest []driver.Value) engine.Row {
	r := make(engine.Row, len(cols))
	for i, name := range cols {
		r[name] = normalizeValue(dest[i])
	}
	return r
}

// normalizeValue maps driver values onto the small set of scalar types the
// Row contract promises. TEXT and BLOB columns both surface as string; the
// drivers disagree on which of the two they return for TEXT.
func normalizeValue(v driver.Value) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func namedValues(args []any) ([]driver.NamedValue, error) {
	if len(args) == 0 {
		return nil, nil
	}
	nv := make([]driver.NamedValue, len(args))
	for i, a := range args {
		v, err := driver.DefaultParameterConverter.ConvertValue(a)
		if err != nil {
			return nil, &engine.Error{
				Code:    engine.CodeMismatch,
				Message: fmt.Sprintf("sqlite: cannot bind parameter %d: %v", i+1, err),
			}
		}
		nv[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return nv, nil
}

func plainValues(nv []driver.NamedValue) []driver.Value {
	if len(nv) == 0 {
		return nil
	}
	vs := make([]driver.Value, len(nv))
	for i, v := range nv {
		vs[i] = v.Value
	}
	return vs
}
