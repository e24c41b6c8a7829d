// Package normalize canonicalizes the string fields user accounts are
// stored and matched by. Use these helpers instead of scattered
// strings.ToLower and strings.TrimSpace calls so login ids, roles, and
// statuses compare the same everywhere.
package normalize

import "strings"

// Email normalizes a login email by trimming whitespace and lowercasing.
// This is the canonical form before storage or comparison; the folded
// login_id_ci shadow field is derived from it with text.Fold.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a display name by trimming whitespace.
// Use text.Fold() for case-insensitive comparison keys.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role normalizes a role value (admin, reporter) by trimming whitespace
// and lowercasing.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status normalizes an account status (active, disabled) by trimming
// whitespace and lowercasing.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
