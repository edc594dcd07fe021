package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"xlinventory/domain/inventory"
	"xlinventory/internal"
)

// DataReader reads an inventory workbook, a single CSV file or a directory
// of CSV files into a sheet dataset
type DataReader struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewDataReader creates a new sheet reader
func NewDataReader(config ExcelConfig) *DataReader {
	return &DataReader{config: config, logger: internal.DefaultLogger}
}

// NewExcelReader creates a reader for the workbook at filePath with default settings
func NewExcelReader(filePath string) *DataReader {
	config := DefaultExcelConfig()
	config.FilePath = filePath
	return NewDataReader(config)
}

// WithLogger replaces the reader's logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	r.logger = logger
	return r
}

// Describe names the source
func (r *DataReader) Describe() string {
	return r.config.FilePath
}

// LoadDataset reads every sheet, in workbook order for .xlsx files and in
// file name order for a CSV directory
func (r *DataReader) LoadDataset(ctx context.Context) (*inventory.Dataset, error) {
	sheets, err := r.ReadSheets(ctx)
	if err != nil {
		return nil, err
	}
	return r.toDataset(sheets), nil
}

// ReadSheets reads the raw sheets without typing the cells
func (r *DataReader) ReadSheets(ctx context.Context) ([]RawSheet, error) {
	info, err := os.Stat(r.config.FilePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("inventory file not found: %s: %w", r.config.FilePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat inventory file: %w", err)
	}

	if info.IsDir() {
		return r.readCSVDir(ctx)
	}
	if strings.EqualFold(filepath.Ext(r.config.FilePath), ".csv") {
		sheet, err := r.readCSVFile(r.config.FilePath)
		if err != nil {
			return nil, err
		}
		return []RawSheet{*sheet}, nil
	}
	return r.readWorkbook(ctx)
}

// readWorkbook reads every sheet of an Excel workbook, keeping cell types
func (r *DataReader) readWorkbook(ctx context.Context) ([]RawSheet, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	r.logger.Debug("[SheetReader] workbook %s opened in %.2fms", r.config.FilePath, float64(time.Since(startTime).Nanoseconds())/1e6)

	var sheets []RawSheet
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := r.readWorksheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *sheet)
	}

	return sheets, nil
}

func (r *DataReader) readWorksheet(f *excelize.File, name string) (*RawSheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	sheet := &RawSheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Headers = headerNames(rows[0])

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		cells := make([]RawCell, len(rows[rowIdx]))
		for colIdx, text := range rows[rowIdx] {
			if text == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("sheet %s: %w", name, err)
			}
			cellType, err := f.GetCellType(name, ref)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell type %s!%s: %w", name, ref, err)
			}
			cells[colIdx] = RawCell{Text: text, Kind: kindOf(cellType)}
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	r.logger.Debug("[SheetReader] sheet %s read (%d columns, %d rows)", name, len(sheet.Headers), len(sheet.Rows))
	return sheet, nil
}

func kindOf(cellType excelize.CellType) CellKind {
	switch cellType {
	case excelize.CellTypeBool:
		return CellBool
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return CellUntyped
	default:
		return CellText
	}
}

// readCSVDir reads every *.csv file of a directory, one sheet per file
func (r *DataReader) readCSVDir(ctx context.Context) ([]RawSheet, error) {
	paths, err := filepath.Glob(filepath.Join(r.config.FilePath, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list CSV files: %w", err)
	}
	sort.Strings(paths)

	sheets := make([]RawSheet, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet, err := r.readCSVFile(path)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *sheet)
	}
	return sheets, nil
}

// readCSVFile reads one CSV file as a sheet named after the file
func (r *DataReader) readCSVFile(path string) (*RawSheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet := &RawSheet{Name: name}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return sheet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}
	sheet.Headers = headerNames(header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
		}
		cells := make([]RawCell, len(record))
		for i, text := range record {
			cells[i] = RawCell{Text: text, Kind: CellInferred}
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	r.logger.Debug("[SheetReader] CSV %s read (%d columns, %d rows)", path, len(sheet.Headers), len(sheet.Rows))
	return sheet, nil
}

func headerNames(cells []string) []string {
	headers := make([]string, len(cells))
	for i, h := range cells {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// toDataset types the cells and drops empty cells and empty rows
func (r *DataReader) toDataset(sheets []RawSheet) *inventory.Dataset {
	ds := inventory.NewDataset()
	for _, sheet := range sheets {
		rows := make([]*inventory.Row, 0, len(sheet.Rows))
		for _, cells := range sheet.Rows {
			row := inventory.NewRow()
			for col, cell := range cells {
				if col >= len(sheet.Headers) || sheet.Headers[col] == "" {
					if cell.Text != "" {
						r.logger.Debug("[SheetReader] sheet %s: value in column %d has no header, skipped", sheet.Name, col+1)
					}
					continue
				}
				value, ok := r.typedValue(cell)
				if !ok {
					continue
				}
				row.Set(sheet.Headers[col], value)
			}
			if row.Len() > 0 {
				rows = append(rows, row)
			}
			r.logger.Trace("[SheetReader] sheet %s row: %d of %d cells kept", sheet.Name, row.Len(), len(cells))
		}
		ds.AddSheet(sheet.Name, rows...)
	}
	return ds
}

// typedValue converts a raw cell to a scalar. Empty cells report false.
func (r *DataReader) typedValue(cell RawCell) (any, bool) {
	text := cell.Text
	if r.config.TrimValues {
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil, false
	}

	switch cell.Kind {
	case CellBool:
		if b, err := strconv.ParseBool(text); err == nil {
			return b, true
		}
		return text, true
	case CellUntyped:
		if n, ok := parseNumber(text); ok {
			return n, true
		}
		return text, true
	case CellInferred:
		if hasLeadingZero(text) {
			return text, true
		}
		if n, ok := parseNumber(text); ok {
			return n, true
		}
		switch strings.ToLower(text) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return text, true
	default:
		return text, true
	}
}

func parseNumber(text string) (any, bool) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f, true
	}
	return nil, false
}

// hasLeadingZero keeps CSV codes such as "007" textual
func hasLeadingZero(text string) bool {
	digits := strings.TrimLeft(text, "+-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] != '.'
}
