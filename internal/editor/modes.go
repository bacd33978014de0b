package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/ye/internal/document"
	"github.com/oakwood-commons/ye/internal/engine"
	"github.com/oakwood-commons/ye/internal/lineinput"
	"github.com/oakwood-commons/ye/internal/modal"
	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/query"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/tree"
)

// ValueDelimiter ends a key edit and continues with the entry's value.
const ValueDelimiter = ":"

// GotoPrompt is the prompt of the goto session.
const GotoPrompt = "."

// cmdTransform previews the query typed so far against a snapshot and
// commits the result on enter. Anything but a found result reverts.
func (e *Editor) cmdTransform(_ engine.Context, _ []string, done func()) error {
	snapshot := e.doc.Snapshot()
	name := e.dialect.Name()
	d := e.dialect
	err := e.ctrl.Open(modal.Transform, lineinput.Session{
		OnChange: func(v string) {
			if strings.TrimSpace(v) == "" {
				e.doc.ShowTransformPreview(snapshot)
				return
			}
			res := query.Transform(snapshot, v, d)
			switch res.Status {
			case query.Found:
				e.doc.ShowTransformPreview(res.Tree)
				e.echo("%s valid: %s", name, v)
			case query.NotFound:
				e.echo("%s not found", name)
			case query.Failed:
				e.doc.ShowTransformPreview(snapshot)
				e.echoErr("%s error: %v", name, res.Err)
			}
		},
		OnSubmit: func(v string) {
			defer done()
			if strings.TrimSpace(v) == "" {
				e.fail(e.doc.Restore(snapshot))
				return
			}
			res := query.Transform(snapshot, v, d)
			switch res.Status {
			case query.Found:
				e.fail(e.doc.ReplaceRoot(res.Tree))
				e.markDirty()
				e.echo("transformed with %s", name)
			case query.NotFound:
				e.fail(e.doc.Restore(snapshot))
				e.echoErr("%s expression not found", name)
			case query.Failed:
				e.fail(e.doc.Restore(snapshot))
				e.echoErr("%s error: %v", name, res.Err)
			}
		},
		OnCancel: func() {
			defer done()
			e.fail(e.doc.Restore(snapshot))
		},
	})
	if err != nil {
		done()
	}
	return err
}

func (e *Editor) cmdInsertAfter(_ engine.Context, _ []string, done func()) error {
	if err := e.doc.BeginEdit(document.OpInsertKey); err != nil {
		done()
		return err
	}
	return e.openEdit(done)
}

// cmdChangeElement renames the key under the cursor, or replaces the value.
// List indexes cannot be renamed, so a key in a list edits its value.
func (e *Editor) cmdChangeElement(_ engine.Context, _ []string, done func()) error {
	op := document.OpSetValue
	if e.doc.Position().Type == position.KindKey && !e.doc.Position().IsRoot() {
		op = document.OpRenameKey
	}
	err := e.doc.BeginEdit(op)
	if op == document.OpRenameKey && errors.Is(err, tree.ErrUnsupported) {
		err = e.doc.BeginEdit(document.OpSetValue)
	}
	if err != nil {
		done()
		return err
	}
	return e.openEdit(done)
}

// openEdit runs an insert mode session for the pending edit. Typing the
// value delimiter while editing a key commits it and continues with the
// value when that is a scalar.
func (e *Editor) openEdit(done func()) error {
	s := lineinput.Session{
		OnChange: func(v string) {
			e.fail(e.doc.UpdateDraft(v))
		},
		OnSubmit: func(v string) {
			defer done()
			e.commit(v, false)
		},
		OnCancel: func() {
			defer done()
			e.fail(e.doc.CancelEdit())
		},
	}
	if ed := e.doc.Edit(); ed != nil && ed.Kind() == position.KindKey {
		s.Delimiters = ValueDelimiter
		s.OnDelimiter = func(v string, _ rune) {
			if !e.commit(v, true) {
				done()
				return
			}
			node, ok := e.doc.Node()
			if !ok || tree.IsContainer(node) || e.doc.Position().Type != position.KindValue {
				done()
				return
			}
			if err := e.doc.BeginEdit(document.OpSetValue); err != nil {
				done()
				e.fail(err)
				return
			}
			e.fail(e.openEdit(done))
		}
	}
	if err := e.ctrl.Open(modal.Insert, s); err != nil {
		e.fail(e.doc.CancelEdit())
		done()
		return err
	}
	return nil
}

// commit writes the draft and reports whether the tree changed.
func (e *Editor) commit(v string, jumpToValue bool) bool {
	if err := e.doc.UpdateDraft(v); err != nil {
		e.fail(err)
	}
	if v == "" {
		e.fail(e.doc.CommitEdit(jumpToValue))
		return false
	}
	if err := e.doc.CommitEdit(jumpToValue); err != nil {
		e.fail(err)
		return false
	}
	e.markDirty()
	return true
}

// searchSession previews matches while typing. submit receives the pattern
// and the matches of the last non-empty preview.
func (e *Editor) searchSession(prompt string, done func(), submit func(pattern string, matches []string)) error {
	var matches []string
	err := e.ctrl.OpenPrompt(modal.Search, prompt, lineinput.Session{
		OnChange: func(v string) {
			if v == "" {
				matches = nil
				e.fail(e.doc.ClearPreview())
				return
			}
			if found := e.doc.Preview(v); len(found) > 0 {
				matches = found
			}
			e.echo("%d matches", len(e.doc.Frame().PreviewMatches))
		},
		OnSubmit: func(v string) {
			defer done()
			if v == "" || len(matches) == 0 {
				e.fail(e.doc.ClearPreview())
				if v != "" {
					e.echoErr("pattern not found: %s", v)
				}
				return
			}
			submit(v, matches)
		},
		OnCancel: func() {
			defer done()
			e.fail(e.doc.ClearPreview())
		},
	})
	if err != nil {
		done()
	}
	return err
}

// cmdSearch jumps to the first match in tree order and remembers the
// pattern for nextMatch and prevMatch.
func (e *Editor) cmdSearch(_ engine.Context, _ []string, done func()) error {
	return e.searchSession(modal.DefaultPrompts[modal.Search], done, func(pattern string, matches []string) {
		e.lastPattern = pattern
		e.selectMatch(matches, 0)
	})
}

// cmdGoto jumps to the first match in tree order.
func (e *Editor) cmdGoto(_ engine.Context, _ []string, done func()) error {
	return e.searchSession(GotoPrompt, done, func(pattern string, matches []string) {
		e.lastPattern = pattern
		e.selectMatch(matches, 0)
	})
}

func (e *Editor) cmdMatch(dir int) engine.Handler {
	return func(ctx engine.Context, _ []string, done func()) error {
		defer done()
		if e.lastPattern == "" {
			return errors.New("no previous search")
		}
		matches := e.matches(e.lastPattern)
		if len(matches) == 0 {
			return fmt.Errorf("pattern not found: %s", e.lastPattern)
		}
		idx := e.matchIndex
		for i := 0; i < ctx.Count; i++ {
			idx = e.step(matches, idx, dir)
		}
		e.selectMatch(matches, idx)
		return nil
	}
}

// step moves one match from idx, relative to the cursor when it is no
// longer on a match.
func (e *Editor) step(matches []string, idx, dir int) int {
	cur := e.doc.Position().Path()
	if idx >= 0 && idx < len(matches) && matches[idx] == cur {
		return (idx + dir + len(matches)) % len(matches)
	}
	if dir > 0 {
		return e.matchAfter(matches, 1)
	}
	return e.matchAfter(matches, -1)
}

func (e *Editor) selectMatch(matches []string, idx int) {
	if idx < 0 || idx >= len(matches) {
		idx = 0
	}
	e.matchIndex = idx
	e.fail(e.doc.SelectPath(matches[idx], position.KindKey))
	e.echo("match %d of %d", idx+1, len(matches))
}

// matches lists the key paths matching pattern in tree order.
func (e *Editor) matches(pattern string) []string {
	re := render.CompilePattern(pattern)
	var out []string
	walkKeys(e.doc.Root(), nil, func(segs []string) {
		if re.MatchString(segs[len(segs)-1]) {
			out = append(out, position.Join(segs))
		}
	})
	return out
}

// matchAfter returns the index of the first match strictly after (dir 1)
// or before (dir -1) the cursor in tree order, wrapping around.
func (e *Editor) matchAfter(matches []string, dir int) int {
	order := map[string]int{}
	i := 0
	walkKeys(e.doc.Root(), nil, func(segs []string) {
		order[position.Join(segs)] = i
		i++
	})
	cur, ok := order[e.doc.Position().Path()]
	if !ok {
		cur = -1
	}
	if dir > 0 {
		for j, m := range matches {
			if order[m] > cur {
				return j
			}
		}
		return 0
	}
	for j := len(matches) - 1; j >= 0; j-- {
		if order[matches[j]] < cur {
			return j
		}
	}
	return len(matches) - 1
}

// walkKeys visits every entry path in pre-order.
func walkKeys(v any, segs []string, visit func([]string)) {
	for _, k := range tree.Keys(v) {
		child, _ := tree.Child(v, k)
		path := append(append([]string(nil), segs...), k)
		visit(path)
		walkKeys(child, path, visit)
	}
}
