package ports

import (
	"context"

	"xlinventory/domain/inventory"
)

// SheetSourcePort produces the per-sheet row records of one inventory run.
// Sheets must come back in source order and include a hosts sheet.
type SheetSourcePort interface {
	// LoadDataset reads every sheet of the source
	LoadDataset(ctx context.Context) (*inventory.Dataset, error)

	// Describe names the source for log lines and errors
	Describe() string
}

// SettingsPort loads the settings document
type SettingsPort interface {
	LoadSettings(ctx context.Context) (*inventory.Settings, error)
}
