// Package document owns the edited tree and exposes navigation and mutation
// in terms of positions. Every change renders first and then places the
// cursor against the new frame.
package document

import (
	"strconv"

	"github.com/oakwood-commons/ye/internal/cursor"
	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/tree"
)

// Document is a tree with a cursor and the latest frame.
type Document struct {
	root     any
	renderer *render.Renderer
	cursor   *cursor.Cursor
	frame    *render.Frame

	width, height int

	edit       *PendingEdit
	search     string
	preview    any
	previewing bool
}

// New creates a document and selects its first top-level key.
func New(root any, r *render.Renderer) *Document {
	if r == nil {
		r = render.New(render.DefaultConfig())
	}
	d := &Document{root: root, renderer: r, cursor: cursor.New()}
	d.selectFirst()
	_ = d.Refresh()
	return d
}

func (d *Document) selectFirst() {
	keys := tree.Keys(d.root)
	if len(keys) == 0 {
		d.cursor.Set(position.Root())
		return
	}
	d.cursor.Set(position.At(nil, keys[0], position.KindKey))
}

// Root returns the stored tree.
func (d *Document) Root() any { return d.root }

// Frame returns the latest render.
func (d *Document) Frame() *render.Frame { return d.frame }

// Cursor returns the cursor.
func (d *Document) Cursor() *cursor.Cursor { return d.cursor }

// Position returns the current position.
func (d *Document) Position() position.Position { return d.cursor.Position() }

// Node returns the value the cursor is on. For a key position it is the
// value under that key.
func (d *Document) Node() (any, bool) {
	p := d.cursor.Position()
	if p.IsRoot() {
		return d.root, true
	}
	v, err := tree.Lookup(d.View(), p.Segments())
	return v, err == nil
}

// Editing reports whether a two-phase edit is open.
func (d *Document) Editing() bool { return d.edit != nil }

// Searching reports whether a search preview is shown.
func (d *Document) Searching() bool { return d.search != "" }

// Renderer returns the renderer.
func (d *Document) Renderer() *render.Renderer { return d.renderer }

// SetRenderer swaps the renderer and re-renders.
func (d *Document) SetRenderer(r *render.Renderer) error {
	if r != nil {
		d.renderer = r
	}
	return d.Refresh()
}

// SetSize changes the viewport and re-renders.
func (d *Document) SetSize(width, height int) error {
	d.width, d.height = width, height
	return d.Refresh()
}

// View returns the tree as displayed, with any pending edit applied.
func (d *Document) View() any {
	if d.previewing {
		return d.preview
	}
	if d.edit != nil {
		return d.edit.apply(d.root)
	}
	return d.root
}

// Refresh re-renders and re-places the cursor without moving it, except
// when the position no longer exists.
func (d *Document) Refresh() error {
	d.draw()
	if d.previewing || d.search != "" {
		d.cursor.Hide()
		return nil
	}
	if d.edit != nil {
		return d.cursor.Place(d.frame)
	}
	return d.cursor.Refresh(d.root, d.frame)
}

func (d *Document) draw() {
	opts := render.Options{
		Search: d.search,
		Height: d.height,
		Width:  d.width,
	}
	src := d.root
	switch {
	case d.previewing:
		src = d.preview
	default:
		p := d.cursor.Position()
		opts.Selection = &p
		if d.edit != nil {
			opts.Overlay = d.edit.apply
		}
	}
	d.frame = d.renderer.Render(src, opts)
}

// move selects patch and redraws. A patch that does not resolve leaves the
// cursor where it is.
func (d *Document) move(patch position.Patch) error {
	d.cursor.Select(d.root, patch)
	return d.Refresh()
}

// siblings returns the keys at the cursor's level and the cursor's index
// among them.
func (d *Document) siblings() ([]string, int) {
	p := d.cursor.Position()
	if p.IsRoot() {
		return nil, -1
	}
	parent, err := tree.Lookup(d.root, p.ParentSegments())
	if err != nil {
		return nil, -1
	}
	keys := tree.Keys(parent)
	for i, k := range keys {
		if k == p.Index {
			return keys, i
		}
	}
	return keys, -1
}

// step moves to the sibling at offset with the given kind, or bubbles to the
// parent level when that runs past either end.
func (d *Document) step(offset int, kind position.Kind) error {
	p := d.cursor.Position()
	if p.IsRoot() {
		return d.Refresh()
	}
	keys, idx := d.siblings()
	target := idx + offset
	if idx < 0 || target < 0 || target >= len(keys) {
		return d.move(position.Full(p.Parent()))
	}
	return d.move(position.IndexPatch(keys[target], kind))
}

func count(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NextKey moves n keys forward.
func (d *Document) NextKey(n int) error {
	return d.step(count(n), position.KindKey)
}

// PrevKey moves n keys back.
func (d *Document) PrevKey(n int) error {
	return d.step(-count(n), position.KindKey)
}

// NextValue moves n values forward. From a key the first step lands on that
// key's own value.
func (d *Document) NextValue(n int) error {
	n = count(n)
	if d.cursor.Position().Type != position.KindValue {
		n--
	}
	return d.step(n, position.KindValue)
}

// PrevValue moves n values back.
func (d *Document) PrevValue(n int) error {
	return d.step(-count(n), position.KindValue)
}

// Enter selects the value of the current entry, descending into containers.
func (d *Document) Enter() error {
	p := d.cursor.Position()
	if p.IsRoot() {
		keys := tree.Keys(d.root)
		if len(keys) == 0 {
			return d.Refresh()
		}
		return d.move(position.Full(position.At(nil, keys[0], position.KindKey)))
	}
	return d.move(position.Patch{Type: position.KindValue})
}

// Exit selects the key of a value, or the parent entry of a key.
func (d *Document) Exit() error {
	p := d.cursor.Position()
	switch {
	case p.IsRoot():
		return d.Refresh()
	case p.Type == position.KindValue:
		return d.move(position.Patch{Type: position.KindKey})
	}
	return d.move(position.Full(p.Parent()))
}

// SelectPath moves to the entry at path. An unknown path leaves the cursor
// unchanged.
func (d *Document) SelectPath(path string, kind position.Kind) error {
	d.search = ""
	return d.move(position.Full(position.FromPath(path, kind)))
}

// RenameKey relabels oldKey at the cursor's level, keeping order. An
// existing entry named newKey is overwritten.
func (d *Document) RenameKey(oldKey, newKey string) error {
	p := d.cursor.Position()
	root, err := tree.RenameAt(d.root, p.ParentSegments(), oldKey, newKey)
	if err != nil {
		return err
	}
	d.root = root
	if p.Index == oldKey {
		d.cursor.Set(position.At(p.ParentSegments(), newKey, position.KindKey))
	}
	return d.Refresh()
}

// SetValue replaces the value at path.
func (d *Document) SetValue(path string, v any) error {
	segs := position.Split(path)
	if len(segs) == 0 {
		d.root = v
		d.cursor.Set(position.Root())
		return d.Refresh()
	}
	root, err := tree.SetAt(d.root, segs[:len(segs)-1], segs[len(segs)-1], v)
	if err != nil {
		return err
	}
	d.root = root
	return d.Refresh()
}

// InsertKeyAfter inserts key: v after anchor at the cursor's level and
// selects the new entry. In lists the key is ignored.
func (d *Document) InsertKeyAfter(anchor, key string, v any) error {
	p := d.cursor.Position()
	parent := p.ParentSegments()
	if p.IsRoot() {
		parent = nil
	}
	root, err := tree.InsertAfterAt(d.root, parent, anchor, key, v)
	if err != nil {
		return err
	}
	d.root = root
	d.cursor.Set(position.At(parent, insertedKey(root, parent, anchor, key), position.KindKey))
	return d.Refresh()
}

func insertedKey(root any, parent []string, anchor, key string) string {
	container, err := tree.Lookup(root, parent)
	if err != nil {
		return key
	}
	if _, ok := container.([]any); !ok {
		return key
	}
	if anchor == "" {
		return "0"
	}
	idx, _ := strconv.Atoi(anchor)
	return strconv.Itoa(idx + 1)
}

// Delete removes n consecutive entries starting at the cursor, leaving the
// cursor on the entry after them. It stops early when the run reaches the
// end of the container and the cursor moves up.
func (d *Document) Delete(n int) error {
	n = count(n)
	for i := 0; i < n; i++ {
		p := d.cursor.Position()
		if p.IsRoot() {
			break
		}
		keys, idx := d.siblings()
		if idx < 0 {
			break
		}
		parent := p.ParentSegments()
		container, _ := tree.Lookup(d.root, parent)
		_, isList := container.([]any)

		root, err := tree.DeleteAt(d.root, parent, p.Index)
		if err != nil {
			return err
		}
		d.root = root

		if idx+1 >= len(keys) {
			d.cursor.Set(p.Parent())
			break
		}
		next := keys[idx+1]
		if isList {
			next = p.Index
		}
		d.cursor.Set(position.At(parent, next, position.KindKey))
	}
	return d.Refresh()
}

// Preview renders the search pattern and returns the matching paths in tree
// order. The cursor box is hidden while a pattern is shown.
func (d *Document) Preview(pattern string) []string {
	d.search = pattern
	_ = d.Refresh()
	return d.frame.PreviewMatches
}

// ClearPreview drops the search pattern.
func (d *Document) ClearPreview() error {
	d.search = ""
	return d.Refresh()
}

// Snapshot returns a deep copy of the tree.
func (d *Document) Snapshot() any {
	return tree.Clone(d.root)
}

// ShowTransformPreview displays t without changing the stored tree.
func (d *Document) ShowTransformPreview(t any) {
	d.preview, d.previewing = t, true
	_ = d.Refresh()
}

// ReplaceRoot stores t as the whole tree and selects its first entry.
func (d *Document) ReplaceRoot(t any) error {
	d.preview, d.previewing = nil, false
	d.root = t
	d.selectFirst()
	return d.Refresh()
}

// Restore puts a snapshot back, keeping the cursor where it can.
func (d *Document) Restore(snapshot any) error {
	d.preview, d.previewing = nil, false
	d.root = snapshot
	return d.Refresh()
}
