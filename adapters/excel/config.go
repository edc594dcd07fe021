package excel

// ExcelConfig holds configuration for the workbook / CSV sheet source
type ExcelConfig struct {
	// FilePath is an .xlsx workbook or a directory of .csv files
	FilePath string `json:"file_path"`
	// TrimValues strips surrounding whitespace from text cells
	TrimValues bool `json:"trim_values"`
}

// DefaultExcelConfig returns sensible defaults for workbook reading
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		TrimValues: false,
	}
}
