package db

import "fmt"

// sqlText coerces a SQL-bearing argument to its string form. Operations
// accept literal text as well as string-like wrapper values.
func sqlText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
