package settings

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
)

const mergeTag = "!!merge"

// resolve follows aliases to the node they point at
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// toValue converts a node into the value model used by variable mappings:
// *inventory.Vars for mappings, []any for sequences and plain scalars.
func toValue(n *yaml.Node, path string) (any, error) {
	n = resolve(n)
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		return toVars(n, path)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for i, child := range n.Content {
			v, err := toValue(child, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		return scalar(n, path)
	default:
		return nil, core.NewInvalidSettingsError(path, fmt.Sprintf("unsupported YAML node at line %d", n.Line))
	}
}

// toVars converts a mapping node, applying << merge keys. Explicit keys win
// over merged ones wherever they appear.
func toVars(n *yaml.Node, path string) (*inventory.Vars, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, core.NewInvalidSettingsError(path, "must be a mapping")
	}

	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.ShortTag() != mergeTag {
			explicit[key.Value] = true
		}
	}

	out := inventory.NewVars()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.ShortTag() == mergeTag {
			if err := mergeInto(out, valueNode, explicit, path); err != nil {
				return nil, err
			}
			continue
		}

		if keyNode.Kind != yaml.ScalarNode {
			return nil, core.NewInvalidSettingsError(path, fmt.Sprintf("non-scalar key at line %d", keyNode.Line))
		}

		value, err := toValue(valueNode, join(path, keyNode.Value))
		if err != nil {
			return nil, err
		}
		out.Set(keyNode.Value, value)
	}
	return out, nil
}

func mergeInto(out *inventory.Vars, source *yaml.Node, explicit map[string]bool, path string) error {
	source = resolve(source)

	var sources []*yaml.Node
	switch source.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{source}
	case yaml.SequenceNode:
		sources = source.Content
	default:
		return core.NewInvalidSettingsError(path, "merge key must reference a mapping")
	}

	for _, src := range sources {
		merged, err := toVars(src, path)
		if err != nil {
			return err
		}
		merged.Each(func(k string, v any) bool {
			if !explicit[k] && !out.Has(k) {
				out.Set(k, v)
			}
			return true
		})
	}
	return nil
}

// yaml11Bools are the YAML 1.1 boolean words beyond true/false. Only plain,
// untagged scalars are read this way; quoted "yes" stays a string.
var yaml11Bools = map[string]bool{
	"yes": true, "Yes": true, "YES": true,
	"on": true, "On": true, "ON": true,
	"no": false, "No": false, "NO": false,
	"off": false, "Off": false, "OFF": false,
}

func scalar(n *yaml.Node, path string) (any, error) {
	if n.Style == 0 && n.ShortTag() == "!!str" {
		if b, ok := yaml11Bools[n.Value]; ok {
			return b, nil
		}
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, core.NewInvalidSettingsError(path, err.Error())
	}
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	default:
		return t, nil
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
