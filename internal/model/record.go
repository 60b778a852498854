package model

import "strings"

// Record is one discharge row in canonical column order. All fields are free
// text; nothing is enforced beyond the fixed width.
type Record [NumColumns]string

// RecordFromFields copies up to NumColumns fields into a Record, padding the
// rest with blanks. Extra fields are dropped.
func RecordFromFields(fields []string) Record {
	var r Record
	copy(r[:], fields)
	return r
}

// Fields returns the record as a slice, suitable for csv.Writer.
func (r Record) Fields() []string {
	out := make([]string, NumColumns)
	copy(out, r[:])
	return out
}

func (r Record) Patient() string       { return r[ColPatient] }
func (r Record) DischargeDate() string { return r[ColDischargeDate] }
func (r Record) Referral() string      { return r[ColReferral] }

// IsBlank reports whether every field is empty after trimming.
func (r Record) IsBlank() bool {
	for _, f := range r {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
