package models

import "strings"

func lowerKey(s string) string {
	return strings.ToLower(s)
}

// nilIfBlank stores empty form values as NULL.
func nilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
