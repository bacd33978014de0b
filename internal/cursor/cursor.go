// Package cursor tracks the selected Position and its on-screen box.
package cursor

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/tree"
)

// ErrDesync means a live position has no region in the latest frame.
var ErrDesync = errors.New("renderer and cursor out of sync")

// Cursor holds the current Position. The zero value is not usable; call New.
type Cursor struct {
	pos   position.Position
	box   render.Region
	boxOK bool
}

// New returns a cursor on the document root.
func New() *Cursor {
	return &Cursor{pos: position.Root()}
}

// Position returns the current position.
func (c *Cursor) Position() position.Position {
	return c.pos
}

// Box returns the highlighted region, if the cursor is placed.
func (c *Cursor) Box() (render.Region, bool) {
	return c.box, c.boxOK
}

// Hide drops the box until the next Place.
func (c *Cursor) Hide() {
	c.boxOK = false
}

// Set moves to p without validation. Used while an edit overlay is shown.
func (c *Cursor) Set(p position.Position) {
	c.pos = p
	c.boxOK = false
}

// Select merges patch over the current position and moves there if the
// result exists in root. On failure the position is unchanged.
func (c *Cursor) Select(root any, patch position.Patch) (position.Position, bool) {
	p, ok := Resolve(root, patch.Apply(c.pos))
	if !ok {
		return c.pos, false
	}
	c.pos = p
	c.boxOK = false
	return p, true
}

// Place looks the current position up in frame.
func (c *Cursor) Place(frame *render.Frame) error {
	r, ok := frame.Region(c.pos.MapKey())
	if !ok {
		c.boxOK = false
		return fmt.Errorf("%w: no region for %s", ErrDesync, c.pos.MapKey())
	}
	c.box = r
	c.boxOK = true
	return nil
}

// Refresh re-places the current position against a new frame. A position
// that no longer exists in root moves up to the nearest live ancestor first.
func (c *Cursor) Refresh(root any, frame *render.Frame) error {
	p := c.pos
	for {
		if _, ok := lookup(root, p); ok || p.IsRoot() {
			break
		}
		p = p.Parent()
	}
	if p != c.pos {
		c.pos, _ = Resolve(root, p)
	}
	return c.Place(frame)
}

// Resolve validates p against root and applies auto-descend: selecting the
// value of a non-empty container selects the key of its first child.
func Resolve(root any, p position.Position) (position.Position, bool) {
	if p.IsRoot() {
		return p, true
	}
	v, ok := lookup(root, p)
	if !ok {
		return p, false
	}
	if p.Type == position.KindValue && tree.IsContainer(v) && !tree.IsEmptyContainer(v) {
		first := tree.Keys(v)[0]
		return position.At(p.Segments(), first, position.KindKey), true
	}
	return p, true
}

func lookup(root any, p position.Position) (any, bool) {
	if p.IsRoot() {
		return root, true
	}
	parent, err := tree.Lookup(root, p.ParentSegments())
	if err != nil {
		return nil, false
	}
	return tree.Child(parent, p.Index)
}
