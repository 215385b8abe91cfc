package normalize

import "strings"

// ID returns a normalized form of a hex record identifier suitable for
// parsing and comparisons. Normalization trims surrounding whitespace
// (query strings and path segments often carry it) and lower-cases the
// hex digits so "AAAA..." and "aaaa..." name the same record.
func ID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
