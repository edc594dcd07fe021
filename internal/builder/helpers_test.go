package builder

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"xlinventory/domain/inventory"
)

// row builds a row from alternating field names and values
func row(kv ...any) *inventory.Row {
	r := inventory.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// vars builds a variable mapping from alternating names and values
func vars(kv ...any) *inventory.Vars {
	return row(kv...)
}

type sheetFixture struct {
	name string
	rows []*inventory.Row
}

func dataset(sheets ...sheetFixture) *inventory.Dataset {
	ds := inventory.NewDataset()
	for _, s := range sheets {
		ds.AddSheet(s.name, s.rows...)
	}
	return ds
}

func sheet(name string, rows ...*inventory.Row) sheetFixture {
	return sheetFixture{name: name, rows: rows}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
