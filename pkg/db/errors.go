package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique violation,
// optionally pinned to one named constraint. Matching is on the error
// text so it works across both drivers.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
