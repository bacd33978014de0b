package tree

import (
	"reflect"
	"sort"
)

// Order remembers the key order of plain maps produced by ToPlain, keyed by
// map identity, so results that hand those maps back keep their order. It
// holds the maps so their identities stay unique while it is in use.
type Order struct {
	keys map[uintptr][]string
	maps []map[string]any
}

// ToPlain converts a tree into map[string]any / []any values that reflection
// based query engines understand.
func ToPlain(v any) (any, *Order) {
	order := &Order{keys: map[uintptr][]string{}}
	return toPlain(v, order), order
}

func toPlain(v any, order *Order) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = toPlain(t.values[k], order)
		}
		order.keys[reflect.ValueOf(out).Pointer()] = t.Keys()
		order.maps = append(order.maps, out)
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e, order)
		}
		return out
	}
	return v
}

// FromPlain converts plain Go values back into a tree. Maps recorded in order
// keep their original key order (restricted to the keys still present);
// other maps get sorted keys.
func FromPlain(v any, order *Order) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Map:
		return t
	case map[string]any:
		m := NewMap()
		for _, k := range plainKeys(t, reflect.ValueOf(t).Pointer(), order) {
			m.Set(k, FromPlain(t[k], order))
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = FromPlain(e, order)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // scalars fall through unchanged
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := NewMap()
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromPlain(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), order))
		}
		return m
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = FromPlain(rv.Index(i).Interface(), order)
		}
		return out
	}
	return v
}

func plainKeys(m map[string]any, id uintptr, order *Order) []string {
	if order == nil {
		order = &Order{}
	}
	if known, ok := order.keys[id]; ok && len(known) >= len(m) {
		keys := make([]string, 0, len(m))
		for _, k := range known {
			if _, present := m[k]; present {
				keys = append(keys, k)
			}
		}
		if len(keys) == len(m) {
			return keys
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
