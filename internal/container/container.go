package container

import (
	"context"
	"fmt"
	"os"

	"xlinventory/adapters/excel"
	"xlinventory/adapters/postgres"
	"xlinventory/adapters/settings"
	"xlinventory/app"
	"xlinventory/domain/inventory"
	"xlinventory/internal"
	"xlinventory/internal/config"
	"xlinventory/ports"
)

// Source kinds selected from the settings document
const (
	SourceXLSX     = "xlsx"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Container holds the application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	SettingsPort ports.SettingsPort
	Customizer   ports.Customizer

	Service *app.InventoryService

	// connect opens the table source; replaced in tests
	connect func(ctx context.Context, databaseURL string, tables []string, orderBy map[string][]string) (ports.SheetSourcePort, error)
}

// New creates a container that reads the settings document at settingsPath.
// The customizer runs after a hook that logs what it receives; nil means
// no caller hook.
func New(cfg *config.Config, settingsPath string, customizer ports.Customizer) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if settingsPath == "" {
		settingsPath = cfg.Settings.File
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))

	c := &Container{
		Config:       cfg,
		Logger:       logger,
		SettingsPort: settings.NewFileLoader(settingsPath),
		Customizer:   ports.ChainCustomizers(logCustomization(logger), customizer),
		connect: func(ctx context.Context, databaseURL string, tables []string, orderBy map[string][]string) (ports.SheetSourcePort, error) {
			source, err := postgres.Connect(ctx, databaseURL, tables)
			if err != nil {
				return nil, err
			}
			return source.WithOrderBy(orderBy).WithLogger(logger), nil
		},
	}
	c.Service = app.NewInventoryService(c.SettingsPort, c.SourceFor, c.Customizer, logger)

	logger.Debug("[Container] settings from %s", settingsPath)
	return c, nil
}

// SourceKind reports which sheet source the settings select: the table
// list wins, then a directory of CSV files, then the workbook.
func SourceKind(s *inventory.Settings) string {
	if len(s.InventoryTables) > 0 {
		return SourcePostgres
	}
	if info, err := os.Stat(s.InventoryFile); err == nil && info.IsDir() {
		return SourceCSV
	}
	return SourceXLSX
}

// SourceFor builds the sheet source selected by the settings
func (c *Container) SourceFor(ctx context.Context, s *inventory.Settings) (ports.SheetSourcePort, error) {
	kind := SourceKind(s)
	c.Logger.Debug("[Container] using %s source", kind)

	switch kind {
	case SourcePostgres:
		if err := c.Config.RequireDatabase(); err != nil {
			return nil, err
		}
		return c.connect(ctx, c.Config.Database.URL, s.InventoryTables, s.InventoryOrderBy)
	default:
		return excel.NewExcelReader(s.InventoryFile).WithLogger(c.Logger), nil
	}
}

// logCustomization reports the structures handed to the customization hooks
func logCustomization(logger *internal.Logger) ports.Customizer {
	return ports.CustomizerFunc(func(_ context.Context, c *inventory.Customization) error {
		logger.Debug("[Customize] %d groups, %d memberships, %d hosts, %d specific vars",
			c.Tree.Len(), c.Membership.Len(), c.HostVars.Len(), c.SpecificVars.Len())
		return nil
	})
}
