package domain

import "strings"

// NormalizeEmail lowercases and trims an email address. Two addresses that
// normalize to the same string refer to the same identity.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
