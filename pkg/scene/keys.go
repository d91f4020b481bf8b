package scene

import "strings"

// NormalizeKey folds a material or category label for lookups and grouping:
// lower-case, trimmed, inner whitespace collapsed to single spaces.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
