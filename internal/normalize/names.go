package normalize

import (
	"strings"
	"unicode"
)

// looksLikeName reports whether s has only letters and spaces and at least
// two words. Accented letters count as letters.
func looksLikeName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return len(strings.Fields(s)) >= 2
}

// capitalized reports whether every word starts with an uppercase letter.
func capitalized(words []string) bool {
	for _, w := range words {
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}
