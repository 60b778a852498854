package normalize

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// EmptyReferral is the group key for records without a referral destination.
const EmptyReferral = "VAZIO"

var repeatedSpaces = regexp.MustCompile(` {2,}`)

// ReferralKey maps a referral value to its grouping key: blank values become
// EmptyReferral, everything else is trimmed, uppercased, de-aliased and has
// runs of spaces collapsed.
func (r Rules) ReferralKey(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return EmptyReferral
	}
	v = strings.ToUpper(v)
	for _, from := range slices.Sorted(maps.Keys(r.ReferralAliases)) {
		v = strings.ReplaceAll(v, strings.ToUpper(from), r.ReferralAliases[from])
	}
	return repeatedSpaces.ReplaceAllString(v, " ")
}

// SafeName replaces every rune that is not a letter, digit, space, underscore
// or hyphen with an underscore. Returns fallback when the result is empty.
func SafeName(v, fallback string) string {
	var b strings.Builder
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
