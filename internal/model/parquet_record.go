package model

// ParquetRecord mirrors the Parquet schema of an exported discharge table.
// Column names match Column.Field.
type ParquetRecord struct {
	Patient       string `parquet:"patient"`
	DischargeType string `parquet:"discharge_type"`
	Phone         string `parquet:"phone"`
	DischargeDate string `parquet:"discharge_date"`
	DiagnosisCode string `parquet:"diagnosis_code"`
	Address       string `parquet:"address"`
	Referral      string `parquet:"referral"`
}

// ToParquet converts a Record into its Parquet row.
func (r Record) ToParquet() ParquetRecord {
	return ParquetRecord{
		Patient:       r[ColPatient],
		DischargeType: r[ColDischargeType],
		Phone:         r[ColPhone],
		DischargeDate: r[ColDischargeDate],
		DiagnosisCode: r[ColDiagnosisCode],
		Address:       r[ColAddress],
		Referral:      r[ColReferral],
	}
}

// Record converts a Parquet row back into a Record.
func (p *ParquetRecord) Record() Record {
	return Record{
		ColPatient:       p.Patient,
		ColDischargeType: p.DischargeType,
		ColPhone:         p.Phone,
		ColDischargeDate: p.DischargeDate,
		ColDiagnosisCode: p.DiagnosisCode,
		ColAddress:       p.Address,
		ColReferral:      p.Referral,
	}
}
