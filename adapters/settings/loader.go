// Package settings reads the YAML settings document that supplies group
// variables, the workbook location and the customization parameters.
package settings

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
)

// Top-level keys of the settings document
const (
	keyInventoryFile   = "inventory_file"
	keyInventoryTables = "inventory_tables"
	keyInventoryOrder  = "inventory_order_by"
	keyGroupVars       = "group_vars"
	keyAllVars         = "all_vars"
	keySpecificVars    = "specific_vars"
)

// FileLoader loads settings from a YAML file
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the settings file at path
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// LoadSettings reads and decodes the settings file
func (l *FileLoader) LoadSettings(ctx context.Context) (*inventory.Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}
	return s, nil
}

// Parse decodes a settings document. Mapping order and key case are kept
// as written. Unknown top-level keys are ignored.
func Parse(data []byte) (*inventory.Settings, error) {
	s := inventory.NewSettings()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, core.NewInvalidSettingsError("", err.Error())
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// empty document
		return s, nil
	}

	root := resolve(doc.Content[0])
	if isNull(root) {
		return s, nil
	}
	top, err := toVars(root, "")
	if err != nil {
		return nil, err
	}

	if v, ok := top.Get(keyInventoryFile); ok && v != nil {
		name, isString := v.(string)
		if !isString || name == "" {
			return nil, core.NewInvalidSettingsError(keyInventoryFile, "must be a non-empty string")
		}
		s.InventoryFile = name
	}

	if v, ok := top.Get(keyInventoryTables); ok && v != nil {
		tables, err := stringList(v)
		if err != nil {
			return nil, core.NewInvalidSettingsError(keyInventoryTables, err.Error())
		}
		s.InventoryTables = tables
	}

	if v, ok := top.Get(keyInventoryOrder); ok && v != nil {
		orderBy, err := orderColumns(v)
		if err != nil {
			return nil, err
		}
		s.InventoryOrderBy = orderBy
	}

	if v, ok := top.Get(keyGroupVars); ok && v != nil {
		section, isMap := v.(*inventory.Vars)
		if !isMap {
			return nil, core.NewInvalidSettingsError(keyGroupVars, "must be a mapping of group name to variables")
		}
		s.GroupVars = inventory.NewOrderedMap[*inventory.Vars]()
		var sectionErr error
		section.Each(func(group string, value any) bool {
			switch gv := value.(type) {
			case nil:
				s.GroupVars.Set(group, nil)
			case *inventory.Vars:
				s.GroupVars.Set(group, gv)
			default:
				sectionErr = core.NewInvalidSettingsError(keyGroupVars+"."+group, "must be a mapping")
				return false
			}
			return true
		})
		if sectionErr != nil {
			return nil, sectionErr
		}
	}

	if v, ok := top.Get(keyAllVars); ok && v != nil {
		allVars, isMap := v.(*inventory.Vars)
		if !isMap {
			return nil, core.NewInvalidSettingsError(keyAllVars, "must be a mapping")
		}
		s.AllVars = allVars
	}

	if v, ok := top.Get(keySpecificVars); ok && v != nil {
		specific, isMap := v.(*inventory.Vars)
		if !isMap {
			return nil, core.NewInvalidSettingsError(keySpecificVars, "must be a mapping")
		}
		s.SpecificVars = specific
	}

	return s, nil
}

func stringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list of table names")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("table names must be non-empty strings")
		}
		out = append(out, name)
	}
	return out, nil
}

// orderColumns reads a mapping of table name to one key column or a list
// of key columns
func orderColumns(v any) (map[string][]string, error) {
	section, ok := v.(*inventory.Vars)
	if !ok {
		return nil, core.NewInvalidSettingsError(keyInventoryOrder, "must be a mapping of table name to key columns")
	}

	out := make(map[string][]string, section.Len())
	var sectionErr error
	section.Each(func(table string, value any) bool {
		field := keyInventoryOrder + "." + table
		switch cols := value.(type) {
		case string:
			if cols == "" {
				sectionErr = core.NewInvalidSettingsError(field, "column name must not be empty")
				return false
			}
			out[table] = []string{cols}
		case []any:
			names, err := stringList(cols)
			if err != nil || len(names) == 0 {
				sectionErr = core.NewInvalidSettingsError(field, "must list one or more column names")
				return false
			}
			out[table] = names
		default:
			sectionErr = core.NewInvalidSettingsError(field, "must be a column name or a list of column names")
			return false
		}
		return true
	})
	if sectionErr != nil {
		return nil, sectionErr
	}
	return out, nil
}
