// mkfixture writes a small messy discharge workbook exercising every row
// repair the normalizer knows about, plus an optional Parquet table of other
// patients for the merge step.
// Usage: go run ./cmd/mkfixture --out testdata/Arquivos/altas.xlsx --rows 40 [--parquet testdata/Arquivos/extra.parquet]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/parquetio"
	"github.com/gyeh/dischargeprep/internal/sheet"
)

var (
	firstNames = []string{"Maria", "João", "Ana", "Pedro", "Beatriz", "Carlos", "Juliana", "Rafael"}
	lastNames  = []string{"Silva", "Souza", "Costa", "Oliveira", "Pereira", "Lima", "Almeida", "Ferreira"}
	referrals  = []string{"CAPS II", "CAPS AD", "caps  três", "UBS Centro", ""}
	discharges = []string{"ALTA", "MELHORADA", "Óbito", "TRANSFERENCIA", "ABANDONO"}
)

func name(i int) string {
	return firstNames[i%len(firstNames)] + " " + lastNames[(i/len(firstNames))%len(lastNames)]
}

// messyRow returns one data row. Every sixth row is clean; the others cycle
// through the shapes the normalizer repairs.
func messyRow(i int, day time.Time) []any {
	ref := referrals[i%len(referrals)]
	typ := discharges[i%len(discharges)]
	phone := fmt.Sprintf("9%04d-%04d", i, i*7%10000)

	switch i % 6 {
	case 1: // second patient name spilled into the discharge type column
		return []any{name(i), name(i + 1)}
	case 2: // two patients in one cell
		return []any{name(i) + ", " + name(i+1), typ, phone, day, "F20", "Rua B, 20", ref}
	case 3: // facility written in the address column
		return []any{name(i), typ, phone, day, "", "CAPS AD", ""}
	case 4: // leading blank cell
		return []any{"", name(i), typ, phone, day, "F32", "Rua C", ref}
	case 5: // two full names glued together
		return []any{"Maria Helena Souza Costa Ana Beatriz Lima Ferreira", typ, phone, day, "", "", ref}
	default:
		return []any{name(i), typ, phone, day, "F20", "Rua A, 10", ref}
	}
}

func writeWorkbook(path string, rows int) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Plan1"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	header := []any{"Pacientes", "Tipo de Alta", "Telefone", "Dia Alta", "Cid", "Endereço", "Encaminhado"}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{"ALTAS DO MÊS"}); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A3", &header); err != nil {
		return err
	}

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		r := messyRow(i, start.AddDate(0, 0, i/3))
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		if err := f.SetSheetRow(sheetName, cell, &r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	// Duplicate of the first patient, to be removed by dedup.
	dup := messyRow(0, start)
	cell, _ := excelize.CoordinatesToCellName(1, rows+4)
	if err := f.SetSheetRow(sheetName, cell, &dup); err != nil {
		return err
	}
	// Dates land in column D, or E on rows with a leading blank cell.
	last, _ := excelize.CoordinatesToCellName(5, rows+4)
	if err := f.SetCellStyle(sheetName, "D4", last, dateStyle); err != nil {
		return fmt.Errorf("apply date style: %w", err)
	}

	// A summary sheet that the converter skips by default.
	if _, err := f.NewSheet("Resumo"); err != nil {
		return err
	}
	if err := f.SetSheetRow("Resumo", "A1", &[]any{"Pacientes", "Total"}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeParquet(path string, rows int) error {
	records := make([]model.Record, 0, rows)
	for i := 0; i < rows; i++ {
		records = append(records, model.Record{
			name(i + 100), "ALTA", "", time.Date(2024, 2, 1+i%28, 0, 0, 0, 0, time.UTC).Format(normalize.ISODate),
			"", "", referrals[i%len(referrals)],
		})
	}
	return parquetio.WriteRecords(path, records)
}

func check(path string) error {
	wb, err := sheet.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	rules := normalize.DefaultRules()
	for _, s := range wb.SheetNames() {
		_, st, err := sheet.ExtractRecords(wb, s, rules)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s header=%d rows=%d records=%d split=%d dropped=%d\n",
			s, st.HeaderRow+1, st.RowsRead, st.Records, st.RowsSplit, st.RowsDropped)
	}
	return nil
}

func main() {
	out := flag.String("out", "testdata/Arquivos/altas.xlsx", "output workbook")
	pq := flag.String("parquet", "", "also write a Parquet table of other patients here")
	maxRows := flag.Int("rows", 40, "data rows to write")
	checkOnly := flag.Bool("check", false, "only print extraction stats for --out, don't write")
	flag.Parse()

	if *checkOnly {
		if err := check(*out); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := writeWorkbook(*out, *maxRows); err != nil {
		fmt.Fprintf(os.Stderr, "write workbook: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rows to %s\n", *maxRows+1, *out)

	if *pq != "" {
		if err := writeParquet(*pq, *maxRows); err != nil {
			fmt.Fprintf(os.Stderr, "write parquet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", *maxRows, *pq)
	}
}
