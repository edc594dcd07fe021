package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"xlinventory/domain/inventory"
	"xlinventory/internal"
)

func quietReader(config ExcelConfig) *DataReader {
	return NewDataReader(config).WithLogger(internal.NewLoggerWithWriter(&bytes.Buffer{}, internal.LogLevelError))
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func sheetRows(t *testing.T, ds *inventory.Dataset, name string) string {
	t.Helper()
	s, ok := ds.Sheet(name)
	require.True(t, ok, "missing sheet %s", name)
	return toJSON(t, s.Rows)
}

// writeWorkbook saves a workbook whose sheets hold the given cell values,
// keyed by cell reference
func writeWorkbook(t *testing.T, sheets []string, cells map[string]map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			continue
		}
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for sheet, values := range cells {
		for ref, value := range values {
			require.NoError(t, f.SetCellValue(sheet, ref, value))
		}
	}

	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDataReader_Workbook(t *testing.T) {
	path := writeWorkbook(t, []string{"hosts", "extra"}, map[string]map[string]any{
		"hosts": {
			"A1": "host_name", "B1": "group", "C1": "port", "D1": "enabled", "E1": "ratio", "F1": "code",
			"A2": "web1", "B2": "web", "C2": 80, "D2": true, "E2": 0.5, "F2": "007",
			// row 3 left empty
			"A4": "db1", "B4": "db", "D4": false,
		},
		"extra": {
			"A1": "host_name", "B1": "group", "C1": "zone",
			"A2": "web1", "B2": "web", "C2": "a",
		},
	})

	ds, err := quietReader(ExcelConfig{FilePath: path}).LoadDataset(context.Background())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range ds.Sheets() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"hosts", "extra"}, names)

	assert.Equal(t,
		`[{"host_name":"web1","group":"web","port":80,"enabled":true,"ratio":0.5,"code":"007"},{"host_name":"db1","group":"db","enabled":false}]`,
		sheetRows(t, ds, "hosts"))
	assert.Equal(t, `[{"host_name":"web1","group":"web","zone":"a"}]`, sheetRows(t, ds, "extra"))

	hosts, _ := ds.Sheet("hosts")
	port, _ := hosts.Rows[0].Get("port")
	assert.Equal(t, int64(80), port)
}

func TestDataReader_WorkbookHeaderOnlySheet(t *testing.T) {
	path := writeWorkbook(t, []string{"hosts", "spare"}, map[string]map[string]any{
		"hosts": {"A1": "host_name", "B1": "group"},
	})

	ds, err := quietReader(ExcelConfig{FilePath: path}).LoadDataset(context.Background())
	require.NoError(t, err)

	hosts, ok := ds.Sheet("hosts")
	require.True(t, ok)
	assert.Empty(t, hosts.Rows)

	spare, ok := ds.Sheet("spare")
	require.True(t, ok)
	assert.Empty(t, spare.Rows)
}

func TestDataReader_CellsWithoutHeaderAreSkipped(t *testing.T) {
	path := writeWorkbook(t, []string{"hosts"}, map[string]map[string]any{
		"hosts": {
			"A1": "host_name", "B1": "group",
			"A2": "web1", "B2": "web", "D2": "stray",
		},
	})

	ds, err := quietReader(ExcelConfig{FilePath: path}).LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[{"host_name":"web1","group":"web"}]`, sheetRows(t, ds, "hosts"))
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := quietReader(ExcelConfig{FilePath: filepath.Join(t.TempDir(), "nope.xlsx")}).LoadDataset(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDataReader_CSVDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.csv"),
		[]byte("host_name,group,zone\nweb1,web,a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hosts.csv"),
		[]byte("host_name,group,port,ratio,tls,zip,note\nweb1,web,80,1.5,TRUE,0042,\n,,,,,,\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	ds, err := quietReader(ExcelConfig{FilePath: dir}).LoadDataset(context.Background())
	require.NoError(t, err)

	sheets := ds.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, "hosts", sheets[0].Name)
	assert.Equal(t, "web", sheets[1].Name)

	assert.Equal(t,
		`[{"host_name":"web1","group":"web","port":80,"ratio":1.5,"tls":true,"zip":"0042"}]`,
		sheetRows(t, ds, "hosts"))
	assert.Equal(t, `[{"host_name":"web1","group":"web","zone":"a"}]`, sheetRows(t, ds, "web"))
}

func TestDataReader_SingleCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.csv")
	require.NoError(t, os.WriteFile(path, []byte("host_name,group\n  web1  ,web\n"), 0o644))

	config := DefaultExcelConfig()
	config.FilePath = path
	config.TrimValues = true

	ds, err := quietReader(config).LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[{"host_name":"web1","group":"web"}]`, sheetRows(t, ds, "hosts"))
}

func TestTypedValue(t *testing.T) {
	r := quietReader(DefaultExcelConfig())

	tests := []struct {
		cell RawCell
		want any
		ok   bool
	}{
		{RawCell{Text: "", Kind: CellText}, nil, false},
		{RawCell{Text: "42", Kind: CellUntyped}, int64(42), true},
		{RawCell{Text: "4.25", Kind: CellUntyped}, 4.25, true},
		{RawCell{Text: "42", Kind: CellText}, "42", true},
		{RawCell{Text: "1", Kind: CellBool}, true, true},
		{RawCell{Text: "FALSE", Kind: CellBool}, false, true},
		{RawCell{Text: "False", Kind: CellInferred}, false, true},
		{RawCell{Text: "NaN", Kind: CellInferred}, "NaN", true},
		{RawCell{Text: "-0.5", Kind: CellInferred}, -0.5, true},
		{RawCell{Text: "0", Kind: CellInferred}, int64(0), true},
		{RawCell{Text: "010", Kind: CellInferred}, "010", true},
	}

	for _, tc := range tests {
		got, ok := r.typedValue(tc.cell)
		assert.Equal(t, tc.ok, ok, "typedValue(%+v)", tc.cell)
		assert.Equal(t, tc.want, got, "typedValue(%+v)", tc.cell)
	}
}
