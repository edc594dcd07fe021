package builder

import (
	"xlinventory/domain/inventory"
)

// ExtractGroupVariables collects group variables from the settings document.
// group_vars is copied entry for entry; all_vars, when present, is stored
// under the all group and replaces any group_vars entry of that name
// entirely.
func ExtractGroupVariables(settings *inventory.Settings) *inventory.GroupVariables {
	groupVars := inventory.NewOrderedMap[*inventory.Vars]()
	if settings == nil {
		return groupVars
	}

	settings.GroupVars.Each(func(name string, vars *inventory.Vars) bool {
		if vars == nil {
			vars = inventory.NewVars()
		}
		groupVars.Set(name, vars)
		return true
	})

	if settings.AllVars != nil {
		groupVars.Set(inventory.AllGroup, settings.AllVars)
	}

	return groupVars
}
