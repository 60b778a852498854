package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/tabular"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		verdict Verdict
	}{
		{"blank", "   ", "", DropBlank},
		{"only commas", ",,,,,,", "", DropNoData},
		{"only quotes", `"","",""`, "", DropNoData},
		{"shifted row", ",ALTA,123,2023-01-01,F20,Rua A,CAPS,extra", "", DropShifted},
		{"name only", "Maria Silva", "", DropNameOnly},
		{"name with empty fields", `Maria Silva,,"",,,,`, "", DropNameOnly},
		{"name with data after column 7 only", "Maria Silva,,,,,,,CAPS", "", DropNameOnly},
		{"full row", "Maria Silva,ALTA,123,2023-01-01,F20,Rua A,CAPS II", "Maria Silva,ALTA,123,2023-01-01,F20,Rua A,CAPS II", Keep},
		{"padded", "Maria Silva,ALTA", "Maria Silva,ALTA,,,,,", Keep},
		{"truncated", "Maria Silva,ALTA,1,2,3,4,5,6,7", "Maria Silva,ALTA,1,2,3,4,5", Keep},
		{"quotes stripped", `"Maria Silva", "ALTA" ,"123"`, "Maria Silva,ALTA,123,,,,", Keep},
		{"missing patient kept", ",ALTA,123", ",ALTA,123,,,,", Keep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, v := CleanLine(tt.in)
			assert.Equal(t, tt.verdict, v)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLines_HeaderAndCounts(t *testing.T) {
	lines := []string{
		"",
		"Pacientes,Tipo de Alta,Telefone,Dia Alta,Cid,Endereço,Encaminhado",
		"Maria Silva,ALTA,123,2023-01-01,F20,Rua A,CAPS II",
		",,,,,,",
		"Joao Costa,,,,,,",
		"Pacientes,Tipo de Alta,Telefone,Dia Alta,Cid,Endereço,Encaminhado",
	}
	res := Lines(lines)

	require.Len(t, res.Lines, 3)
	assert.Equal(t, lines[1], res.Lines[0])
	assert.Equal(t, 2, res.Kept, "header is not counted, repeated header is a data row")
	assert.Equal(t, 3, res.Discarded)
	assert.Equal(t, DropBlank, res.Dropped[1])
	assert.Equal(t, DropNoData, res.Dropped[4])
	assert.Equal(t, DropNameOnly, res.Dropped[5])
}

func TestLines_Idempotent(t *testing.T) {
	lines := []string{
		"Pacientes,Tipo de Alta,Telefone,Dia Alta,Cid,Endereço,Encaminhado",
		`"Maria Silva",ALTA,"123",,,,`,
		`Ana Paula,""",,,,,`,
		`Rui Souza," ",ALTA`,
		`Carla Dias," "x",ALTA`,
		",,,,,,,,,",
		",OBITO,,,,,,,,",
		"Beatriz Souza,ALTA,1,2,3,4,5,6,7,8",
		"   ",
		`"`,
	}
	first := Lines(lines)
	second := Lines(first.Lines)

	assert.Equal(t, first.Lines, second.Lines)
	assert.Zero(t, second.Discarded)
	assert.Equal(t, first.Kept, second.Kept)
}

func TestFile_InPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encaminhado__CAPS II.csv")
	content := "Pacientes,Tipo de Alta\nMaria Silva,ALTA\nJoao Costa,,,\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := File(path, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 2, res.Discarded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Pacientes,Tipo de Alta\nMaria Silva,ALTA,,,,,\n", string(data))
}

func TestCleanFields(t *testing.T) {
	out, v := CleanFields([]string{"Silva, Maria", "ALTA", "", "2023-03-02", "", "Rua B, 20", "CAPS II"})
	assert.Equal(t, Keep, v)
	assert.Equal(t, []string{"Silva, Maria", "ALTA", "", "2023-03-02", "", "Rua B, 20", "CAPS II"}, out)

	_, v = CleanFields([]string{"Maria Silva", "", " ", ""})
	assert.Equal(t, DropNameOnly, v)

	_, v = CleanFields([]string{"", "ALTA", "", "", "", "", "CAPS", "x"})
	assert.Equal(t, DropShifted, v)
}

func TestTable_KeepsHeaderAndCounts(t *testing.T) {
	in := &model.Table{
		Source: "p.csv",
		Header: []string{"Pacientes", "Tipo de Alta"},
		Rows: [][]string{
			{"Maria Silva", "ALTA", "", "", "", "Rua A, 10", "CAPS II"},
			{"Joao Costa"},
			{"", "", ""},
		},
	}
	res := Table(in)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 2, res.Discarded)
	assert.Equal(t, map[int]Verdict{2: DropNameOnly, 3: DropNoData}, res.Dropped)
	assert.Equal(t, in.Header, res.Table.Header)
	assert.Equal(t, [][]string{{"Maria Silva", "ALTA", "", "", "", "Rua A, 10", "CAPS II"}}, res.Table.Rows)
	assert.Len(t, in.Rows, 3)
}

func TestDir_KeepsQuotedFieldsIntact(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "clean")

	content := "Pacientes,Tipo de Alta,Telefone,Dia Alta,Cid,Endereço,Encaminhado\n" +
		"Maria Silva,ALTA,999,2023-01-05,F20,\"Rua A, 10\",CAPS II\n" +
		"\"Silva, Maria\",ALTA,,2023-03-02,,,CAPS II\n" +
		"Ana Lima,ALTA,,2023-03-01,,\"Rua B\nBloco 2\",CAPS II\n"
	require.NoError(t, os.WriteFile(filepath.Join(src, "encaminhado__CAPS II.csv"), []byte(content), 0o644))

	results, err := Dir(src, dst, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Kept)
	assert.Equal(t, 0, results[0].Discarded)

	got, err := tabular.ReadTable(filepath.Join(dst, "encaminhado__CAPS II.csv"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Maria Silva", "ALTA", "999", "2023-01-05", "F20", "Rua A, 10", "CAPS II"},
		{"Silva, Maria", "ALTA", "", "2023-03-02", "", "", "CAPS II"},
		{"Ana Lima", "ALTA", "", "2023-03-01", "", "Rua B\nBloco 2", "CAPS II"},
	}, got.Rows)
}

func TestDir_CopiesThroughOnFailure(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "clean")

	good := "Pacientes\nMaria Silva,ALTA\n"
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte(good), 0o644))
	// no header row, so it cannot be parsed as a table
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.csv"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0o644))

	results, err := Dir(src, dst, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].CopiedThrough)
	assert.Equal(t, 1, results[0].Kept)
	assert.True(t, results[1].CopiedThrough)

	cleaned, err := os.ReadFile(filepath.Join(dst, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Pacientes\nMaria Silva,ALTA,,,,,\n", string(cleaned))

	copied, err := os.ReadFile(filepath.Join(dst, "b.csv"))
	require.NoError(t, err)
	assert.Empty(t, copied)

	_, err = os.Stat(filepath.Join(dst, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}
