package models

import "strings"

func trim(s string) string { return strings.TrimSpace(s) }

// NullableString maps blank strings to nil for optional columns.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
