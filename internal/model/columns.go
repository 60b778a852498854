package model

import "strings"

// Column describes one field of the canonical discharge schema.
type Column struct {
	Header string // CSV header, e.g. "Pacientes"
	Field  string // parquet/db column name, e.g. "patient"
}

// Canonical field positions within a Record.
const (
	ColPatient = iota
	ColDischargeType
	ColPhone
	ColDischargeDate
	ColDiagnosisCode
	ColAddress
	ColReferral

	NumColumns
)

// AllColumns lists the canonical columns in file order.
var AllColumns = [NumColumns]Column{
	{Header: "Pacientes", Field: "patient"},
	{Header: "Tipo de Alta", Field: "discharge_type"},
	{Header: "Telefone", Field: "phone"},
	{Header: "Dia Alta", Field: "discharge_date"},
	{Header: "Cid", Field: "diagnosis_code"},
	{Header: "Endereço", Field: "address"},
	{Header: "Encaminhado", Field: "referral"},
}

// CanonicalHeader returns a fresh copy of the canonical CSV header.
func CanonicalHeader() []string {
	h := make([]string, NumColumns)
	for i, c := range AllColumns {
		h[i] = c.Header
	}
	return h
}

// FieldNames returns the parquet/db column names in canonical order.
func FieldNames() []string {
	names := make([]string, NumColumns)
	for i, c := range AllColumns {
		names[i] = c.Field
	}
	return names
}

// ColumnByHeader returns the canonical index for a header name, matched
// case-insensitively after trimming, or ok=false.
func ColumnByHeader(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, c := range AllColumns {
		if strings.EqualFold(c.Header, name) {
			return i, true
		}
	}
	return 0, false
}
