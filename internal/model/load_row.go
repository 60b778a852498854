package model

import (
	"time"

	"github.com/google/uuid"
)

// LoadRow is the DB-ready representation of a discharge record.
// Optional text fields are nil when blank.
type LoadRow struct {
	BatchID         uuid.UUID
	SourceRowNumber int64

	Patient       string
	DischargeType *string
	Phone         *string
	DischargeDate *time.Time
	DischargeRaw  *string
	DiagnosisCode *string
	Address       *string
	Referral      *string
	ReferralKey   string
}

// LoadColumns returns the ordered column names for COPY into altas.records.
func LoadColumns() []string {
	return []string{
		"batch_id",
		"source_row_number",
		"patient",
		"discharge_type",
		"phone",
		"discharge_date",
		"discharge_date_raw",
		"diagnosis_code",
		"address",
		"referral",
		"referral_key",
	}
}

// CopyValues returns the row values in the same order as LoadColumns(),
// suitable for pgx CopyFromSource.
func (r *LoadRow) CopyValues() []any {
	return []any{
		r.BatchID,
		r.SourceRowNumber,
		r.Patient,
		r.DischargeType,
		r.Phone,
		r.DischargeDate,
		r.DischargeRaw,
		r.DiagnosisCode,
		r.Address,
		r.Referral,
		r.ReferralKey,
	}
}
