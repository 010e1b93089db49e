// Package utils holds small helpers for reading list-size parameters. They
// carry no domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int and returns def when s is empty or
// not a number. Surrounding whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampLimit resolves a requested page size: non-positive values fall back to
// def, and the result never exceeds max when max is positive.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
