package utils

import "strings"

// KebabCase derives a column id from a display title: lowercase, split on
// whitespace runs, join with hyphens. "In Progress" -> "in-progress". The
// transform is idempotent, so ids can be re-slugged safely.
func KebabCase(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), "-")
}
