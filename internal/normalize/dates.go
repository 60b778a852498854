package normalize

import (
	"strings"
	"time"
)

// ISODate is the layout spreadsheet dates are written in.
const ISODate = "2006-01-02"

// Date formats seen in the discharge sheets, most specific first.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Day-first layouts win over month-first ones. Returns nil if the input is
// empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
