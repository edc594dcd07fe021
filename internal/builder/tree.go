package builder

import (
	"xlinventory/domain/inventory"
)

// BuildGroupTree lists every group the document will contain: all, then the
// groups with variables, then the groups with members.
func BuildGroupTree(groupVars *inventory.GroupVariables, membership *inventory.GroupHostMembership) *inventory.GroupTree {
	tree := inventory.NewOrderedMap[struct{}]()
	tree.Set(inventory.AllGroup, struct{}{})

	for _, name := range groupVars.Keys() {
		tree.Set(name, struct{}{})
	}
	for _, name := range membership.Keys() {
		tree.Set(name, struct{}{})
	}

	return tree
}
