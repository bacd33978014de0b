package tree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded YAML node into a tree, keeping mapping order.
// Timestamps and binary scalars stay strings.
func FromYAML(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			if kn.Tag == "!!merge" {
				if err := mergeInto(m, vn); err != nil {
					return nil, err
				}
				continue
			}
			v, err := FromYAML(vn)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", kn.Value, err)
			}
			m.Set(kn.Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!timestamp", "!!binary", "!!str":
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("yaml node kind %d: %w", n.Kind, ErrUnsupported)
}

// mergeInto applies a "<<" merge value; explicit keys already set win.
func mergeInto(m *Map, n *yaml.Node) error {
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := FromYAML(src)
		if err != nil {
			return err
		}
		sm, ok := v.(*Map)
		if !ok {
			return fmt.Errorf("merge of non-mapping: %w", ErrUnsupported)
		}
		for _, k := range sm.Keys() {
			if !m.Has(k) {
				val, _ := sm.Get(k)
				m.Set(k, val)
			}
		}
	}
	return nil
}
