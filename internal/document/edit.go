package document

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/scalar"
	"github.com/oakwood-commons/ye/internal/tree"
)

// ErrEditOpen is returned by BeginEdit while another edit is pending.
var ErrEditOpen = errors.New("an edit is already in progress")

// Op is the kind of two-phase edit.
type Op int

const (
	OpRenameKey Op = iota + 1
	OpSetValue
	OpInsertKey
)

func (o Op) String() string {
	switch o {
	case OpRenameKey:
		return "rename-key"
	case OpSetValue:
		return "set-value"
	case OpInsertKey:
		return "insert-key"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// PendingEdit is an edit being typed. It lives beside the tree and is only
// applied to a copy for display until it is committed.
type PendingEdit struct {
	Op     Op
	Parent string // path of the container being edited
	Anchor string // edited key, or the key an insert follows
	Draft  string

	root   bool
	list   bool
	origin position.Position
}

// Kind reports whether the draft is a key label or a value.
func (e *PendingEdit) Kind() position.Kind {
	if e.Op == OpSetValue || (e.Op == OpInsertKey && e.list) {
		return position.KindValue
	}
	return position.KindKey
}

func (e *PendingEdit) draftValue() any {
	return scalar.Parse(e.Draft)
}

func (e *PendingEdit) result(root any) (any, error) {
	parent := position.Split(e.Parent)
	switch e.Op {
	case OpInsertKey:
		if e.list {
			return tree.InsertAfterAt(root, parent, e.Anchor, "", e.draftValue())
		}
		return tree.InsertAfterAt(root, parent, e.Anchor, e.Draft, "")
	case OpRenameKey:
		return tree.RenameAt(root, parent, e.Anchor, e.Draft)
	case OpSetValue:
		if e.root {
			return e.draftValue(), nil
		}
		return tree.SetAt(root, parent, e.Anchor, e.draftValue())
	}
	return nil, fmt.Errorf("edit %s: %w", e.Op, tree.ErrUnsupported)
}

// apply is the render overlay. The empty draft shows up as the "" key or
// value placeholder.
func (e *PendingEdit) apply(root any) any {
	out, err := e.result(root)
	if err != nil {
		return root
	}
	return out
}

// target is the position of the draft token.
func (e *PendingEdit) target() position.Position {
	parent := position.Split(e.Parent)
	switch {
	case e.root:
		return position.Root()
	case e.Op == OpInsertKey && e.list:
		idx := 0
		if e.Anchor != "" {
			idx, _ = strconv.Atoi(e.Anchor)
			idx++
		}
		return position.At(parent, strconv.Itoa(idx), position.KindValue)
	case e.Op == OpSetValue:
		return position.At(parent, e.Anchor, position.KindValue)
	}
	return position.At(parent, e.Draft, position.KindKey)
}

// Edit returns the open edit, or nil.
func (d *Document) Edit() *PendingEdit {
	return d.edit
}

// BeginEdit opens a two-phase edit at the cursor with an empty draft.
func (d *Document) BeginEdit(op Op) error {
	if d.edit != nil {
		return ErrEditOpen
	}
	p := d.cursor.Position()
	e := &PendingEdit{Op: op, origin: p}
	if !p.IsRoot() {
		e.Parent, e.Anchor = p.Nested, p.Index
	}

	container, err := tree.Lookup(d.root, position.Split(e.Parent))
	if err != nil {
		return err
	}
	_, e.list = container.([]any)

	switch op {
	case OpInsertKey:
		if !tree.IsContainer(container) {
			return fmt.Errorf("insert: %w", tree.ErrNotContainer)
		}
	case OpRenameKey:
		if p.IsRoot() {
			return fmt.Errorf("rename root: %w", tree.ErrUnsupported)
		}
		if e.list {
			return fmt.Errorf("rename list index: %w", tree.ErrUnsupported)
		}
	case OpSetValue:
		e.root = p.IsRoot()
	default:
		return fmt.Errorf("edit %s: %w", op, tree.ErrUnsupported)
	}

	d.edit = e
	d.cursor.Set(e.target())
	return d.Refresh()
}

// UpdateDraft replaces the draft text and redraws the preview.
func (d *Document) UpdateDraft(text string) error {
	if d.edit == nil {
		return nil
	}
	d.edit.Draft = text
	d.cursor.Set(d.edit.target())
	return d.Refresh()
}

// CommitEdit writes the draft into the tree. An empty draft reverts. With
// jumpToValue a key edit ends on the value of the edited entry.
func (d *Document) CommitEdit(jumpToValue bool) error {
	e := d.edit
	if e == nil {
		return nil
	}
	if e.Draft == "" {
		return d.CancelEdit()
	}
	root, err := e.result(d.root)
	if err != nil {
		d.edit = nil
		d.cursor.Set(e.origin)
		_ = d.Refresh()
		return err
	}
	d.edit = nil
	d.root = root

	switch tgt := e.target(); {
	case tgt.IsRoot():
		d.selectFirst()
	case tgt.Type == position.KindValue || jumpToValue:
		d.cursor.Set(tgt.WithType(position.KindKey))
		d.cursor.Select(d.root, position.Patch{Type: position.KindValue})
	default:
		d.cursor.Set(tgt)
	}
	return d.Refresh()
}

// CancelEdit drops the draft and returns to where the edit started.
func (d *Document) CancelEdit() error {
	e := d.edit
	if e == nil {
		return nil
	}
	d.edit = nil
	d.cursor.Set(e.origin)
	return d.Refresh()
}
