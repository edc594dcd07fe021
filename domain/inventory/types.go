package inventory

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Reserved names shared by the sources, the builders and the document
const (
	HostsSheet    = "hosts"
	HostNameField = "host_name"
	GroupField    = "group"
	AllGroup      = "all"
	MetaKey       = "_meta"
)

// Row is one data row of a sheet: header name → scalar cell value
// (string, int64, float64, bool or nil), in column order.
type Row = OrderedMap[any]

// Vars is a variable mapping. Values may nest *Vars and []any.
type Vars = OrderedMap[any]

// NewRow creates an empty row
func NewRow() *Row { return NewOrderedMap[any]() }

// NewVars creates an empty variable mapping
func NewVars() *Vars { return NewOrderedMap[any]() }

// Sheet is a named, ordered collection of rows sharing one header
type Sheet struct {
	Name string
	Rows []*Row
}

// Dataset maps sheet name to sheet, in workbook order
type Dataset struct {
	sheets *OrderedMap[*Sheet]
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{sheets: NewOrderedMap[*Sheet]()}
}

// AddSheet appends (or replaces) a sheet and returns it
func (d *Dataset) AddSheet(name string, rows ...*Row) *Sheet {
	if d.sheets == nil {
		d.sheets = NewOrderedMap[*Sheet]()
	}
	s := &Sheet{Name: name, Rows: rows}
	d.sheets.Set(name, s)
	return s
}

// Sheet returns the named sheet
func (d *Dataset) Sheet(name string) (*Sheet, bool) {
	if d == nil {
		return nil, false
	}
	return d.sheets.Get(name)
}

// Sheets returns the sheets in dataset order
func (d *Dataset) Sheets() []*Sheet {
	if d == nil {
		return nil
	}
	out := make([]*Sheet, 0, d.sheets.Len())
	d.sheets.Each(func(_ string, s *Sheet) bool {
		out = append(out, s)
		return true
	})
	return out
}

// RowCount returns the total number of rows across all sheets
func (d *Dataset) RowCount() int {
	n := 0
	for _, s := range d.Sheets() {
		n += len(s.Rows)
	}
	return n
}

// HostVariables maps host name to its merged variables
type HostVariables = OrderedMap[*Vars]

// GroupVariables maps group name to its variables
type GroupVariables = OrderedMap[*Vars]

// GroupHostMembership maps group name to member host names in encounter
// order. Duplicates are kept.
type GroupHostMembership = OrderedMap[[]string]

// GroupTree enumerates every group that appears in the document
type GroupTree = OrderedMap[struct{}]

// Customization hands the derived structures to a customization hook.
// Hooks may mutate any of the four structures in place.
type Customization struct {
	Tree         *GroupTree
	GroupVars    *GroupVariables
	Membership   *GroupHostMembership
	HostVars     *HostVariables
	SpecificVars *Vars
}

// Group is one group entry of the inventory document. A nil field is
// absent from the output; a non-nil empty Hosts encodes as [].
type Group struct {
	Hosts []string
	Vars  *Vars
}

// MarshalJSON writes vars before hosts
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if g.Vars != nil {
		vars, err := json.Marshal(g.Vars)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"vars":`)
		buf.Write(vars)
	}
	if g.Hosts != nil {
		hosts, err := json.Marshal(g.Hosts)
		if err != nil {
			return nil, err
		}
		if g.Vars != nil {
			buf.WriteByte(',')
		}
		buf.WriteString(`"hosts":`)
		buf.Write(hosts)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is the assembled inventory
type Document struct {
	Groups   *OrderedMap[*Group]
	HostVars *HostVariables
}

type meta struct {
	HostVars *HostVariables `json:"hostvars"`
}

// MarshalJSON emits every group followed by the reserved _meta entry
func (d *Document) MarshalJSON() ([]byte, error) {
	out := NewOrderedMap[any]()
	d.Groups.Each(func(name string, g *Group) bool {
		out.Set(name, g)
		return true
	})
	hostVars := d.HostVars
	if hostVars == nil {
		hostVars = NewOrderedMap[*Vars]()
	}
	out.Set(MetaKey, meta{HostVars: hostVars})
	return out.MarshalJSON()
}

// Settings is the decoded settings document
type Settings struct {
	InventoryFile   string
	InventoryTables []string
	// InventoryOrderBy names the key columns that order each table's rows
	InventoryOrderBy map[string][]string
	GroupVars       *OrderedMap[*Vars]
	AllVars         *Vars
	SpecificVars    *Vars
}

// DefaultInventoryFile is used when the settings omit inventory_file
const DefaultInventoryFile = "inventory.xlsx"

// NewSettings returns settings with every default applied
func NewSettings() *Settings {
	return &Settings{
		InventoryFile: DefaultInventoryFile,
		SpecificVars:  NewVars(),
	}
}

// ScalarString renders a cell value used as a host or group name
func ScalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
