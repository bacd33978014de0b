// Package tree holds the in-memory document model: ordered maps, lists and
// scalars, plus order-preserving copy-on-write mutation along paths.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is an ordered string-keyed mapping. Insertion order is the render and
// navigation order.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value arguments. It panics on an odd
// argument count or a non-string key and is intended for literals and tests.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("tree.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree.MapOf: key %v is %T, not string", kv[i], kv[i]))
		}
		m.Set(k, kv[i+1])
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map) Has(k string) bool {
	_, ok := m.Get(k)
	return ok
}

// Index returns the position of k, or -1.
func (m *Map) Index(k string) int {
	if m == nil {
		return -1
	}
	for i, key := range m.keys {
		if key == k {
			return i
		}
	}
	return -1
}

// Set replaces the value of an existing key in place or appends a new entry.
func (m *Map) Set(k string, v any) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Delete removes k. Missing keys are ignored.
func (m *Map) Delete(k string) {
	idx := m.Index(k)
	if idx < 0 {
		return
	}
	m.keys = append(m.keys[:idx:idx], m.keys[idx+1:]...)
	delete(m.values, k)
}

// Rename relabels oldKey as newKey keeping its value and position. When
// newKey already names another entry, that entry is dropped and the renamed
// entry takes its value slot at oldKey's position.
func (m *Map) Rename(oldKey, newKey string) error {
	idx := m.Index(oldKey)
	if idx < 0 {
		return fmt.Errorf("rename %q: %w", oldKey, ErrNotFound)
	}
	if oldKey == newKey {
		return nil
	}
	v := m.values[oldKey]
	rebuilt := make([]string, 0, len(m.keys))
	for i, k := range m.keys {
		switch {
		case i == idx:
			rebuilt = append(rebuilt, newKey)
		case k == newKey:
			// collision: last write wins at the renamed position
		default:
			rebuilt = append(rebuilt, k)
		}
	}
	delete(m.values, oldKey)
	m.values[newKey] = v
	m.keys = rebuilt
	return nil
}

// InsertAfter inserts k immediately after anchor. An empty anchor inserts at
// the front; an anchor that is not present appends. An existing k other
// than anchor is moved after anchor and keeps its value.
func (m *Map) InsertAfter(anchor, k string, v any) {
	if k == anchor && m.Has(k) {
		m.values[k] = v
		return
	}
	if old, ok := m.values[k]; ok {
		v = old
		m.Delete(k)
	}
	pos := len(m.keys)
	if anchor == "" && !m.Has("") {
		pos = 0
	} else if idx := m.Index(anchor); idx >= 0 {
		pos = idx + 1
	}
	m.keys = append(m.keys, "")
	copy(m.keys[pos+1:], m.keys[pos:])
	m.keys[pos] = k
	m.values[k] = v
}

// shallow copies the entry list without copying nested containers.
func (m *Map) shallow() *Map {
	out := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Clone deep copies the map.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = Clone(v)
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping node in key order.
func (m *Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m == nil {
		return node, nil
	}
	for _, k := range m.keys {
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(m.values[k]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		node.Content = append(node.Content, &kn, &vn)
	}
	return node, nil
}
