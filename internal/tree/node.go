package tree

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotFound is returned when a path segment does not resolve.
	ErrNotFound = errors.New("entry not found")
	// ErrNotContainer is returned when a path descends into a scalar.
	ErrNotContainer = errors.New("not a container")
	// ErrUnsupported is returned for operations a container kind cannot perform.
	ErrUnsupported = errors.New("unsupported for container")
)

// IsContainer reports whether v is a Map or a list.
func IsContainer(v any) bool {
	switch v.(type) {
	case *Map, []any:
		return true
	}
	return false
}

// IsEmptyContainer reports whether v is a container without entries.
func IsEmptyContainer(v any) bool {
	switch t := v.(type) {
	case *Map:
		return t.Len() == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Keys returns the entry keys of a container: map keys in order, or list
// indices in their decimal form. Scalars have no keys.
func Keys(v any) []string {
	switch t := v.(type) {
	case *Map:
		return t.Keys()
	case []any:
		keys := make([]string, len(t))
		for i := range t {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

// Child returns the entry key of container v.
func Child(v any, key string) (any, bool) {
	switch t := v.(type) {
	case *Map:
		return t.Get(key)
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(t) {
			return nil, false
		}
		return t[idx], true
	}
	return nil, false
}

// Lookup walks segments from root.
func Lookup(root any, segments []string) (any, error) {
	cur := root
	for i, seg := range segments {
		if !IsContainer(cur) {
			return nil, fmt.Errorf("segment %d %q: %w", i, seg, ErrNotContainer)
		}
		next, ok := Child(cur, seg)
		if !ok {
			return nil, fmt.Errorf("segment %d %q: %w", i, seg, ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// Clone deep copies any node.
func Clone(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	}
	return v
}

// Equal reports deep equality, including map key order.
func Equal(a, b any) bool {
	switch ta := a.(type) {
	case *Map:
		tb, ok := b.(*Map)
		if !ok || ta.Len() != tb.Len() {
			return false
		}
		for i, k := range ta.keys {
			if tb.keys[i] != k || !Equal(ta.values[k], tb.values[k]) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	if IsContainer(b) {
		return false
	}
	return a == b
}

// rebuild copies every container along parent and hands the copy of the final
// one to fn. Containers off the path are shared with the old root.
func rebuild(root any, parent []string, fn func(container any) (any, error)) (any, error) {
	if len(parent) == 0 {
		switch t := root.(type) {
		case *Map:
			return fn(t.shallow())
		case []any:
			return fn(append([]any(nil), t...))
		}
		return nil, fmt.Errorf("root: %w", ErrNotContainer)
	}
	key := parent[0]
	child, ok := Child(root, key)
	if !ok {
		if !IsContainer(root) {
			return nil, fmt.Errorf("segment %q: %w", key, ErrNotContainer)
		}
		return nil, fmt.Errorf("segment %q: %w", key, ErrNotFound)
	}
	updated, err := rebuild(child, parent[1:], fn)
	if err != nil {
		return nil, err
	}
	switch t := root.(type) {
	case *Map:
		out := t.shallow()
		out.values[key] = updated
		return out, nil
	case []any:
		out := append([]any(nil), t...)
		idx, _ := strconv.Atoi(key)
		out[idx] = updated
		return out, nil
	}
	return nil, fmt.Errorf("segment %q: %w", key, ErrNotContainer)
}

// SetAt replaces the value at parent+key and returns the new root.
func SetAt(root any, parent []string, key string, v any) (any, error) {
	return rebuild(root, parent, func(c any) (any, error) {
		switch t := c.(type) {
		case *Map:
			if !t.Has(key) {
				return nil, fmt.Errorf("set %q: %w", key, ErrNotFound)
			}
			t.Set(key, v)
			return t, nil
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(t) {
				return nil, fmt.Errorf("set [%s]: %w", key, ErrNotFound)
			}
			t[idx] = v
			return t, nil
		}
		return nil, ErrNotContainer
	})
}

// RenameAt relabels an entry of the map at parent and returns the new root.
func RenameAt(root any, parent []string, oldKey, newKey string) (any, error) {
	return rebuild(root, parent, func(c any) (any, error) {
		m, ok := c.(*Map)
		if !ok {
			return nil, fmt.Errorf("rename in list: %w", ErrUnsupported)
		}
		if err := m.Rename(oldKey, newKey); err != nil {
			return nil, err
		}
		return m, nil
	})
}

// InsertAfterAt inserts key: v after anchor in the container at parent. For
// lists the key is ignored and v is inserted after the anchor index.
func InsertAfterAt(root any, parent []string, anchor, key string, v any) (any, error) {
	return rebuild(root, parent, func(c any) (any, error) {
		switch t := c.(type) {
		case *Map:
			t.InsertAfter(anchor, key, v)
			return t, nil
		case []any:
			pos := 0
			if anchor != "" {
				idx, err := strconv.Atoi(anchor)
				if err != nil || idx < 0 || idx >= len(t) {
					return nil, fmt.Errorf("insert after [%s]: %w", anchor, ErrNotFound)
				}
				pos = idx + 1
			}
			t = append(t, nil)
			copy(t[pos+1:], t[pos:])
			t[pos] = v
			return t, nil
		}
		return nil, ErrNotContainer
	})
}

// DeleteAt removes key from the container at parent and returns the new root.
func DeleteAt(root any, parent []string, key string) (any, error) {
	return rebuild(root, parent, func(c any) (any, error) {
		switch t := c.(type) {
		case *Map:
			if !t.Has(key) {
				return nil, fmt.Errorf("delete %q: %w", key, ErrNotFound)
			}
			t.Delete(key)
			return t, nil
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(t) {
				return nil, fmt.Errorf("delete [%s]: %w", key, ErrNotFound)
			}
			return append(t[:idx:idx], t[idx+1:]...), nil
		}
		return nil, ErrNotContainer
	})
}
