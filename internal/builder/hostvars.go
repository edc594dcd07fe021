package builder

import (
	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
)

// BuildHostVariables derives host name → variables from the dataset.
//
// The hosts sheet defines every host: its row, minus host_name and group,
// becomes the base variables. A repeated host_name in the hosts sheet
// replaces the earlier row. Rows of every other sheet, in dataset order, are
// then merged into the existing host entry and overwrite same-named keys.
func BuildHostVariables(ds *inventory.Dataset) (*inventory.HostVariables, error) {
	hostsSheet, ok := ds.Sheet(inventory.HostsSheet)
	if !ok {
		return nil, core.NewMissingSheetError(inventory.HostsSheet)
	}

	hostVars := inventory.NewOrderedMap[*inventory.Vars]()

	for i, row := range hostsSheet.Rows {
		host, _, err := identity(hostsSheet.Name, i+1, row)
		if err != nil {
			return nil, err
		}
		hostVars.Set(host, variablesOf(row))
	}

	for _, sheet := range ds.Sheets() {
		if sheet.Name == inventory.HostsSheet {
			continue
		}

		for i, row := range sheet.Rows {
			host, _, err := identity(sheet.Name, i+1, row)
			if err != nil {
				return nil, err
			}

			vars, known := hostVars.Get(host)
			if !known {
				return nil, core.NewUnknownHostError(sheet.Name, i+1, host)
			}

			variablesOf(row).Each(func(key string, value any) bool {
				vars.Set(key, value)
				return true
			})
		}
	}

	return hostVars, nil
}

// variablesOf copies a row without the reserved identity fields
func variablesOf(row *inventory.Row) *inventory.Vars {
	vars := row.Clone()
	vars.Delete(inventory.HostNameField)
	vars.Delete(inventory.GroupField)
	return vars
}
