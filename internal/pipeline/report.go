package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/tabular"
)

// ReportFile is the name of the summary written next to the partitions.
const ReportFile = "relatorio_pacientes_por_caps.txt"

// ReportEntry is one referral group in the report.
type ReportEntry struct {
	Name     string
	FileName string
	Count    int
}

// Report holds per-group counts sorted by count, largest first.
type Report struct {
	Generated time.Time
	Dir       string
	Entries   []ReportEntry
	Total     int
}

// BuildReport counts the data rows of every CSV in dir. Files that cannot be
// read are logged and left out.
func BuildReport(dir string, now time.Time, log zerolog.Logger) (*Report, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(matches)

	rep := &Report{Generated: now, Dir: dir}
	for _, path := range matches {
		base := filepath.Base(path)
		t, err := tabular.ReadTable(path)
		if err != nil {
			log.Warn().Err(err).Str("file", base).Msg("could not count rows")
			continue
		}
		rep.Entries = append(rep.Entries, ReportEntry{
			Name:     groupDisplayName(base),
			FileName: base,
			Count:    t.Len(),
		})
		rep.Total += t.Len()
	}

	sort.SliceStable(rep.Entries, func(i, j int) bool {
		return rep.Entries[i].Count > rep.Entries[j].Count
	})
	return rep, nil
}

// groupDisplayName turns "encaminhado__CAPS_AD.csv" into "CAPS AD".
func groupDisplayName(fileName string) string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	name = strings.TrimPrefix(name, "encaminhado__")
	return strings.ReplaceAll(name, "_", " ")
}

// Percent returns the share of e in the report total.
func (r *Report) Percent(e ReportEntry) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(e.Count) * 100 / float64(r.Total)
}

// Text renders the report.
func (r *Report) Text() string {
	rule := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "RELATÓRIO DE PACIENTES POR CAPS")
	fmt.Fprintf(&b, "Data: %s\n", r.Generated.Format("02/01/2006 15:04:05"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "TOTAL GERAL: %d pacientes\n", r.Total)
	fmt.Fprintf(&b, "DISTRIBUÍDOS EM: %d CAPS diferentes\n", len(r.Entries))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "DETALHAMENTO POR CAPS:")
	fmt.Fprintln(&b, dash)
	for i, e := range r.Entries {
		fmt.Fprintf(&b, "%2d. %-30s %4d pacientes (%5.1f%%)\n", i+1, e.Name, e.Count, r.Percent(e))
	}
	fmt.Fprintln(&b, dash)
	fmt.Fprintf(&b, "%-34s %4d pacientes (100.0%%)\n", "TOTAL:", r.Total)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "ARQUIVOS GERADOS:")
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "• %s\n", e.FileName)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Arquivos localizados em: %s%c\n", filepath.Base(r.Dir), filepath.Separator)
	fmt.Fprintln(&b, rule)
	return b.String()
}

// WriteReport writes the rendered report to path.
func WriteReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(r.Text()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
