package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/tomyedwab/asyncsqlite/db"
	"github.com/tomyedwab/asyncsqlite/engine"
)

func main() {
	location := flag.String("db", engine.Memory, "Database location: a path, \":memory:\", or empty for an anonymous temp database")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sessionID := uuid.NewString()
	logger.Info("Starting sqlshell", "session", sessionID, "db", *location)

	ctx := context.Background()
	conn := db.Open(*location)
	if err := conn.Connected(ctx); err != nil {
		logger.Error("Failed to open database", "session", sessionID, "error", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if strings.EqualFold(line, ".quit") {
			break
		}
		execute(ctx, conn, line)
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Input error", "session", sessionID, "error", err)
		os.Exit(1)
	}
}

// execute runs one line of SQL. Row-producing statements stream through
// Each; everything else goes through Run so the affected-row count and
// last-insert id can be reported.
func execute(ctx context.Context, conn *db.Connection, line string) {
	word := strings.ToLower(strings.Fields(line)[0])
	if word == "select" || word == "pragma" || word == "with" || word == "explain" {
		rows := conn.Each(ctx, line)
		defer rows.Close()
		n := 0
		for rows.Next() {
			fmt.Println(formatRow(rows.Row()))
			n++
		}
		if err := rows.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Printf("(%d rows)\n", n)
		return
	}

	res, err := conn.Run(ctx, line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("ok (changes=%d last_insert_id=%d)\n", res.Changes, res.LastInsertID)
}

func formatRow(row engine.Row) string {
	parts := make([]string, 0, len(row))
	for name, value := range row {
		parts = append(parts, fmt.Sprintf("%s=%v", name, value))
	}
	return strings.Join(parts, " ")
}
