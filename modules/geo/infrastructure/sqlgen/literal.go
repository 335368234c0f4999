// Package sqlgen renders the idempotent SQL artifacts loaded by SQL*Plus.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Quote renders s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Literal renders a Go value as a SQL literal. Absent values (nil, nil
// pointers) render as NULL, never as an empty string.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return Quote(x)
	case *string:
		if x == nil {
			return "NULL"
		}
		return Quote(*x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return "NULL"
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	default:
		return Quote(fmt.Sprint(x))
	}
}

func values(vs ...any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Literal(v)
	}
	return strings.Join(parts, ", ")
}
