package normalize

import (
	"github.com/google/uuid"

	"github.com/gyeh/dischargeprep/internal/model"
)

// ToLoadRow converts a deduplicated Record into a DB-ready LoadRow.
// Blank optional fields become NULL; the raw discharge date is kept next to
// the parsed one because the sheets mix formats.
func (r Rules) ToLoadRow(rec model.Record, batchID uuid.UUID, rowNum int64) *model.LoadRow {
	return &model.LoadRow{
		BatchID:         batchID,
		SourceRowNumber: rowNum,

		Patient:       rec.Patient(),
		DischargeType: optStr(rec[model.ColDischargeType]),
		Phone:         optStr(rec[model.ColPhone]),
		DischargeDate: ParseDate(rec.DischargeDate()),
		DischargeRaw:  optStr(rec.DischargeDate()),
		DiagnosisCode: optStr(rec[model.ColDiagnosisCode]),
		Address:       optStr(rec[model.ColAddress]),
		Referral:      optStr(rec.Referral()),
		ReferralKey:   r.ReferralKey(rec.Referral()),
	}
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
