// Package builder turns a sheet dataset and a settings document into the
// structures an inventory document is assembled from.
//
// Every builder is a pure function over its inputs: it never mutates the
// dataset or settings it is given, and it fails on the first invariant
// violation without returning a partial result.
package builder

import (
	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
)

// identity extracts host_name and group from a row. Absent and null values
// are both a missing-field violation.
func identity(sheet string, rowNum int, row *inventory.Row) (string, string, error) {
	host, hasHost := row.Get(inventory.HostNameField)
	group, hasGroup := row.Get(inventory.GroupField)

	if !hasHost || host == nil {
		return "", "", core.NewMissingFieldError(sheet, rowNum, inventory.HostNameField, host, group)
	}
	if !hasGroup || group == nil {
		return "", "", core.NewMissingFieldError(sheet, rowNum, inventory.GroupField, host, group)
	}

	return inventory.ScalarString(host), inventory.ScalarString(group), nil
}

// BuildGroupMembership derives group → host name lists from the dataset.
//
// Each row appends its host_name to the group named by its group field.
// Each sheet other than hosts also becomes a group whose list is replaced,
// once the sheet has been scanned, by every host_name of that sheet in row
// order. The replacement discards whatever earlier rows accumulated under a
// group of the same name. Duplicates are preserved.
func BuildGroupMembership(ds *inventory.Dataset) (*inventory.GroupHostMembership, error) {
	membership := inventory.NewOrderedMap[[]string]()

	for _, sheet := range ds.Sheets() {
		sheetHosts := make([]string, 0, len(sheet.Rows))

		for i, row := range sheet.Rows {
			host, group, err := identity(sheet.Name, i+1, row)
			if err != nil {
				return nil, err
			}

			sheetHosts = append(sheetHosts, host)

			members, _ := membership.Get(group)
			membership.Set(group, append(members, host))
		}

		if sheet.Name != inventory.HostsSheet {
			membership.Set(sheet.Name, sheetHosts)
		}
	}

	return membership, nil
}
