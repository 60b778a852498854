package pipeline

import "strings"

// FindColumn returns the index of the first header matching one of the
// candidates. Every candidate is tried as a trimmed, case-insensitive exact
// match before any is tried as a substring. Returns -1 when nothing matches.
func FindColumn(header []string, candidates ...string) int {
	for _, c := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i
			}
		}
	}
	for _, c := range candidates {
		c = strings.ToLower(c)
		for i, h := range header {
			if strings.Contains(strings.ToLower(h), c) {
				return i
			}
		}
	}
	return -1
}

// field returns row[i] or "" when the row is too short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
