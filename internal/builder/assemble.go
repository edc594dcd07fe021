package builder

import (
	"xlinventory/domain/inventory"
)

// Assemble merges the group skeleton, group variables, memberships and host
// variables into the final document.
//
// Groups named in groupVars or membership but missing from tree are created,
// since a customization hook may add names after the tree is built. A group
// named _meta is dropped: that key is reserved for hostvars. Whether hosts in
// group lists exist in hostVars is not checked.
func Assemble(
	tree *inventory.GroupTree,
	groupVars *inventory.GroupVariables,
	membership *inventory.GroupHostMembership,
	hostVars *inventory.HostVariables,
) *inventory.Document {
	groups := inventory.NewOrderedMap[*inventory.Group]()

	groupFor := func(name string) *inventory.Group {
		g, ok := groups.Get(name)
		if !ok {
			g = &inventory.Group{}
			groups.Set(name, g)
		}
		return g
	}

	for _, name := range tree.Keys() {
		groupFor(name)
	}

	groupVars.Each(func(name string, vars *inventory.Vars) bool {
		if vars == nil {
			vars = inventory.NewVars()
		}
		groupFor(name).Vars = vars
		return true
	})

	membership.Each(func(name string, hosts []string) bool {
		if hosts == nil {
			hosts = []string{}
		}
		groupFor(name).Hosts = hosts
		return true
	})

	groups.Delete(inventory.MetaKey)

	if hostVars == nil {
		hostVars = inventory.NewOrderedMap[*inventory.Vars]()
	}

	return &inventory.Document{
		Groups:   groups,
		HostVars: hostVars,
	}
}

// ReservedGroupUsed reports whether any structure names a group _meta,
// which Assemble will drop
func ReservedGroupUsed(
	tree *inventory.GroupTree,
	groupVars *inventory.GroupVariables,
	membership *inventory.GroupHostMembership,
) bool {
	return tree.Has(inventory.MetaKey) || groupVars.Has(inventory.MetaKey) || membership.Has(inventory.MetaKey)
}
