package excel

// RawSheet is one sheet as read from disk: header cells plus data rows of
// raw cells, before typing
type RawSheet struct {
	Name    string
	Headers []string
	Rows    [][]RawCell
}

// RawCell is a cell's text plus the type hint the file format gives for it
type RawCell struct {
	Text string
	Kind CellKind
}

// CellKind is the storage type of a cell
type CellKind int

const (
	// CellUntyped cells are numbers or formulas without a stored type
	CellUntyped CellKind = iota
	CellText
	CellBool
	// CellInferred cells come from CSV and are typed from their text
	CellInferred
)
