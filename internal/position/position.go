// Package position addresses entries of a document tree: a nesting path, the
// selected entry key and whether the key label or the value is selected.
package position

import "strings"

// Kind selects the key label or the value of an entry.
type Kind string

const (
	// KindKey selects the key label.
	KindKey Kind = "key"
	// KindValue selects the value.
	KindValue Kind = "value"
)

// Position is a cursor location in the tree.
type Position struct {
	Index  string // key (or list index) at the current level
	Nested string // path of the parent container, empty at the root level
	Type   Kind
}

// Root addresses the document itself.
func Root() Position {
	return Position{Type: KindValue}
}

// At builds a Position from parent segments.
func At(parent []string, index string, kind Kind) Position {
	return Position{Index: index, Nested: Join(parent), Type: kind}
}

// FromPath builds a Position from a full path.
func FromPath(path string, kind Kind) Position {
	segs := Split(path)
	if len(segs) == 0 {
		return Root()
	}
	return At(segs[:len(segs)-1], segs[len(segs)-1], kind)
}

// IsRoot reports whether p addresses the document itself.
func (p Position) IsRoot() bool {
	return p.Index == "" && p.Nested == "" && p.Type == KindValue
}

// ParentSegments returns the path segments of the enclosing container.
func (p Position) ParentSegments() []string {
	return Split(p.Nested)
}

// Segments returns the full path segments of the entry.
func (p Position) Segments() []string {
	if p.IsRoot() {
		return nil
	}
	return append(p.ParentSegments(), p.Index)
}

// Path returns the full dotted path of the entry.
func (p Position) Path() string {
	return Join(p.Segments())
}

// MapKey returns the region map key "path@type".
func (p Position) MapKey() string {
	return MapKey(p.Path(), p.kind())
}

// Parent returns the key position of the container holding p. The parent of
// a top-level entry is the root position.
func (p Position) Parent() Position {
	parent := p.ParentSegments()
	if len(parent) == 0 {
		return Root()
	}
	return At(parent[:len(parent)-1], parent[len(parent)-1], KindKey)
}

// WithType returns p with a different kind.
func (p Position) WithType(kind Kind) Position {
	p.Type = kind
	return p
}

// String renders p as ".path [type]" for the path line.
func (p Position) String() string {
	var b strings.Builder
	b.WriteByte('.')
	b.WriteString(p.Path())
	b.WriteString(" [")
	b.WriteString(string(p.kind()))
	b.WriteByte(']')
	return b.String()
}

func (p Position) kind() Kind {
	if p.Type == "" {
		return KindKey
	}
	return p.Type
}

// MapKey joins a path and a kind into a region map key.
func MapKey(path string, kind Kind) string {
	return path + "@" + string(kind)
}

// Patch overrides selected fields of a Position. Nil pointers and an empty
// Type keep the current value.
type Patch struct {
	Index  *string
	Nested *string
	Type   Kind
}

// Apply merges the patch over p.
func (pt Patch) Apply(p Position) Position {
	if pt.Index != nil {
		p.Index = *pt.Index
	}
	if pt.Nested != nil {
		p.Nested = *pt.Nested
	}
	if pt.Type != "" {
		p.Type = pt.Type
	}
	return p
}

// Full returns a patch that replaces every field.
func Full(p Position) Patch {
	index, nested := p.Index, p.Nested
	return Patch{Index: &index, Nested: &nested, Type: p.kind()}
}

// IndexPatch returns a patch that moves to another key at the same level.
func IndexPatch(index string, kind Kind) Patch {
	return Patch{Index: &index, Type: kind}
}
