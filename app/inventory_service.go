package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
	"xlinventory/internal"
	"xlinventory/internal/builder"
	"xlinventory/internal/errors"
	"xlinventory/ports"
)

// InventoryService runs the inventory pipeline: load, build, customize,
// assemble. Each call works on fresh structures, so one service may be
// reused across runs.
type InventoryService struct {
	settingsPort ports.SettingsPort
	sourceFor    SourceSelector
	customizer   ports.Customizer
	logger       *internal.Logger
}

// NewInventoryService creates a pipeline service. sourceFor picks the sheet
// source once the settings are known; a nil customizer means no-op.
func NewInventoryService(
	settingsPort ports.SettingsPort,
	sourceFor SourceSelector,
	customizer ports.Customizer,
	logger *internal.Logger,
) *InventoryService {
	if customizer == nil {
		customizer = ports.NoopCustomizer
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &InventoryService{
		settingsPort: settingsPort,
		sourceFor:    sourceFor,
		customizer:   customizer,
		logger:       logger,
	}
}

// Build loads the settings and the dataset, then generates the document
func (s *InventoryService) Build(ctx context.Context) (*inventory.Document, error) {
	settings, err := s.settingsPort.LoadSettings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load settings")
	}

	source, err := s.sourceFor(ctx, settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select inventory source")
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	startTime := time.Now()
	ds, err := source.LoadDataset(ctx)
	if err != nil {
		return nil, errors.SourceError(source.Describe(), err)
	}
	s.logger.Debug("[Pipeline] loaded %d sheets (%d rows) from %s in %.2fms",
		len(ds.Sheets()), ds.RowCount(), source.Describe(), float64(time.Since(startTime).Nanoseconds())/1e6)

	return s.Generate(ctx, ds, settings)
}

// Generate turns a dataset and settings into an inventory document. It
// fails on the first violated invariant and never returns a partial
// document.
func (s *InventoryService) Generate(ctx context.Context, ds *inventory.Dataset, settings *inventory.Settings) (*inventory.Document, error) {
	runID := core.NewRunID()
	if settings == nil {
		settings = inventory.NewSettings()
	}

	groupVars := builder.ExtractGroupVariables(settings)

	membership, err := builder.BuildGroupMembership(ds)
	if err != nil {
		s.logger.Error("[Pipeline] run=%s group membership: %v", runID, err)
		return nil, errors.InventoryInvalid(err)
	}

	hostVars, err := builder.BuildHostVariables(ds)
	if err != nil {
		s.logger.Error("[Pipeline] run=%s host variables: %v", runID, err)
		return nil, errors.InventoryInvalid(err)
	}

	tree := builder.BuildGroupTree(groupVars, membership)
	s.logger.Debug("[Pipeline] run=%s built %d groups, %d hosts", runID, tree.Len(), hostVars.Len())

	specificVars := settings.SpecificVars
	if specificVars == nil {
		specificVars = inventory.NewVars()
	}

	customization := &inventory.Customization{
		Tree:         tree,
		GroupVars:    groupVars,
		Membership:   membership,
		HostVars:     hostVars,
		SpecificVars: specificVars,
	}
	if err := s.customizer.Customize(ctx, customization); err != nil {
		s.logger.Error("[Pipeline] run=%s customization failed: %v", runID, err)
		return nil, errors.Wrap(err, "customization hook failed")
	}

	if builder.ReservedGroupUsed(customization.Tree, customization.GroupVars, customization.Membership) {
		s.logger.Warn("[Pipeline] run=%s group %q is reserved and was dropped", runID, inventory.MetaKey)
	}

	doc := builder.Assemble(customization.Tree, customization.GroupVars, customization.Membership, customization.HostVars)
	s.logger.Info("[Pipeline] run=%s inventory assembled: %d groups, %d hosts", runID, doc.Groups.Len(), doc.HostVars.Len())

	return doc, nil
}

// SourceSelector picks the sheet source once the settings are known
type SourceSelector func(ctx context.Context, settings *inventory.Settings) (ports.SheetSourcePort, error)

// StaticSource always answers with the same source
func StaticSource(source ports.SheetSourcePort) SourceSelector {
	return func(context.Context, *inventory.Settings) (ports.SheetSourcePort, error) {
		if source == nil {
			return nil, fmt.Errorf("no sheet source configured")
		}
		return source, nil
	}
}
