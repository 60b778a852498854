package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rules holds the tunable vocabularies used by the row heuristics.
// The zero value is not useful; start from DefaultRules.
type Rules struct {
	// DischargeTypes are the values accepted in the "Tipo de Alta" column.
	// Compared uppercased with accents folded.
	DischargeTypes []string `yaml:"discharge_types"`
	// FacilityPrefixes mark an address that is really a referral destination.
	FacilityPrefixes []string `yaml:"facility_prefixes"`
	// ReferralAliases are literal replacements applied to uppercased referral
	// values before grouping, e.g. "TRÊS" -> "TRES".
	ReferralAliases map[string]string `yaml:"referral_aliases"`
}

// DefaultRules returns the rules tuned for the discharge spreadsheets.
func DefaultRules() Rules {
	return Rules{
		DischargeTypes:   []string{"MELHORADA", "ALTA", "OBITO", "TRANSFERENCIA", "ABANDONO"},
		FacilityPrefixes: []string{"CAPS", "UBS", "HOSPITAL"},
		ReferralAliases:  map[string]string{"TRÊS": "TRES"},
	}
}

// IsDischargeType reports whether v is one of the known discharge types.
func (r Rules) IsDischargeType(v string) bool {
	v = FoldUpper(v)
	if v == "" {
		return false
	}
	for _, t := range r.DischargeTypes {
		if FoldUpper(t) == v {
			return true
		}
	}
	return false
}

// HasFacilityPrefix reports whether v starts with a facility prefix,
// ignoring case.
func (r Rules) HasFacilityPrefix(v string) bool {
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, p := range r.FacilityPrefixes {
		if p != "" && strings.HasPrefix(v, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

// FoldUpper trims, strips combining marks and uppercases s ("Óbito" -> "OBITO").
func FoldUpper(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}
