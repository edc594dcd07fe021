package builder

import (
	"xlinventory/domain/inventory"
)

// HostVarsFor returns the variables of one host, or an empty mapping when
// the document does not know the host. This is the answer to a dynamic
// inventory --host query.
func HostVarsFor(doc *inventory.Document, host string) *inventory.Vars {
	if doc != nil {
		if vars, ok := doc.HostVars.Get(host); ok && vars != nil {
			return vars
		}
	}
	return inventory.NewVars()
}
