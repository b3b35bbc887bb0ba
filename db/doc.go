// Package db provides an awaitable request/response interface over the
// callback-based engine in package engine. Every operation suspends the
// calling goroutine until exactly one engine completion callback fires, and
// row iteration converts the engine's push-style row callbacks into a
// pull-based sequence with one-in-flight backpressure.
//
// # Basic Usage
//
//	conn := db.Open("app.db")
//	if err := conn.Connected(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close(ctx)
//
//	if err := conn.Exec(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, key TEXT)"); err != nil {
//		log.Fatal(err)
//	}
//	res, err := conn.Run(ctx, "INSERT INTO t (key) VALUES (?)", "foo")
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Printf("inserted row %d", res.LastInsertID)
//
//	rows := conn.Each(ctx, "SELECT id, key FROM t ORDER BY id")
//	defer rows.Close()
//	for rows.Next() {
//		log.Println(rows.Row())
//	}
//	if err := rows.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// # Prepared statements
//
//	stmt := conn.Prepare("INSERT INTO t (id, key) VALUES (?, ?)")
//	if _, err := stmt.Run(ctx, 1, "foo"); err != nil {
//		log.Fatal(err) // compilation errors surface here, not from Prepare
//	}
//	if _, err := stmt.Run(ctx, 2, "bar"); err != nil {
//		log.Fatal(err)
//	}
//	defer stmt.Finalize(ctx)
//
// # Error Handling
//
// Engine errors are never swallowed, retried, translated or wrapped; they
// propagate with the engine's original result code intact. Branch on them
// with engine.ErrCode or errors.As:
//
//	if err := conn.Connected(ctx); engine.IsCantOpen(err) {
//		// bad path
//	}
//
// A context passed to an operation only abandons the caller's wait; the
// in-flight engine operation itself cannot be cancelled and has no timeout.
package db
