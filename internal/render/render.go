// Package render lays a document tree out as numbered text lines and records
// where every key and value token landed. The region map it produces is the
// only link between tree addresses and screen coordinates.
package render

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/scalar"
	"github.com/oakwood-commons/ye/internal/tree"
)

// Overlay returns the tree to display in place of the stored one.
type Overlay func(root any) any

// Options are the per-call render inputs.
type Options struct {
	Selection *position.Position
	Search    string
	Overlay   Overlay
	Height    int
	Width     int
}

// Config holds layout settings that stay fixed for a session.
type Config struct {
	Indent      int
	InlineWidth int
	Ruler       bool
}

// DefaultConfig returns the stock layout.
func DefaultConfig() Config {
	return Config{Indent: 2, InlineWidth: 60, Ruler: true}
}

// Renderer turns trees into Frames. It holds no per-render state.
type Renderer struct {
	cfg Config
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	if cfg.Indent <= 0 {
		cfg.Indent = 2
	}
	return &Renderer{cfg: cfg}
}

// Config returns the layout settings.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render lays out root. The result depends only on the arguments.
func (r *Renderer) Render(root any, opts Options) *Frame {
	if opts.Overlay != nil {
		root = opts.Overlay(root)
	}
	w := &walker{
		cfg:     r.cfg,
		opts:    opts,
		regions: Regions{},
	}
	if opts.Search != "" {
		w.search = CompilePattern(opts.Search)
		w.visible = map[string]bool{}
		w.markVisible(root, nil, false)
	}
	if opts.Width > 0 {
		w.maxWidth = opts.Width
	}

	rootSelected := opts.Selection != nil && opts.Selection.IsRoot()
	if tree.IsContainer(root) && !tree.IsEmptyContainer(root) {
		w.children(root, nil, 0, rootSelected)
	} else {
		text := scalar.Stringify(root)
		w.lines = append(w.lines, Line{{Text: text, Role: RoleValue, Selected: rootSelected}})
	}

	width := 0
	for _, l := range w.lines {
		if lw := runewidth.StringWidth(l.String()); lw > width {
			width = lw
		}
	}
	w.regions[position.Root().MapKey()] = Region{Width: width, Height: len(w.lines)}

	f := &Frame{
		Lines:          w.lines,
		Regions:        w.regions,
		PreviewMatches: w.matches,
	}
	if r.cfg.Ruler {
		f.Gutter = gutterWidth(len(w.lines))
	}
	if opts.Height > len(w.lines) {
		f.Filler = opts.Height - len(w.lines)
	}
	f.buildText()
	return f
}

// CompilePattern builds the case-insensitive search expression. Invalid
// syntax falls back to a literal match.
func CompilePattern(pattern string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	return re
}

// KeyLabel is the display text of a key.
func KeyLabel(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if unicode.IsControl(r) {
			return strconv.Quote(k)
		}
	}
	return k
}

type walker struct {
	cfg      Config
	opts     Options
	search   *regexp.Regexp
	visible  map[string]bool
	maxWidth int

	lines   []Line
	regions Regions
	matches []string
}

// markVisible records which entries survive a search: those whose key
// matches, those under a match and those above one.
func (w *walker) markVisible(v any, segs []string, forced bool) bool {
	found := false
	for _, k := range tree.Keys(v) {
		child, _ := tree.Child(v, k)
		path := appendSeg(segs, k)
		self := w.search.MatchString(k)
		below := false
		if tree.IsContainer(child) {
			below = w.markVisible(child, path, forced || self)
		}
		if forced || self || below {
			w.visible[position.Join(path)] = true
			found = true
		}
	}
	return found
}

func (w *walker) isSelected(segs []string, k string, kind position.Kind) bool {
	sel := w.opts.Selection
	if sel == nil || sel.IsRoot() || sel.Index != k || sel.Type != kind {
		return false
	}
	return sel.Nested == position.Join(segs)
}

// children emits the entries of container v at the given indent.
func (w *walker) children(v any, segs []string, indent int, selected bool) {
	for _, k := range tree.Keys(v) {
		child, _ := tree.Child(v, k)
		path := appendSeg(segs, k)
		joined := position.Join(path)
		if w.visible != nil && !w.visible[joined] {
			continue
		}
		if w.search != nil && w.search.MatchString(k) {
			w.matches = append(w.matches, joined)
		}
		w.entry(segs, k, child, indent, selected)
	}
}

func (w *walker) entry(segs []string, k string, v any, indent int, selected bool) {
	path := appendSeg(segs, k)
	joined := position.Join(path)
	keySel := selected || w.isSelected(segs, k, position.KindKey)
	valSel := selected || w.isSelected(segs, k, position.KindValue)

	line := Line{}
	if indent > 0 {
		line = append(line, Span{Text: strings.Repeat(" ", indent), Selected: selected})
	}
	col := indent
	label := KeyLabel(k)
	keySpans := w.keySpans(label, keySel)
	line = append(line, keySpans...)
	labelWidth := runewidth.StringWidth(label)
	w.regions[position.MapKey(joined, position.KindKey)] = Region{
		Line: len(w.lines), Column: col, Width: labelWidth, Height: 1,
	}
	col += labelWidth

	if tree.IsContainer(v) && !tree.IsEmptyContainer(v) {
		if w.inline(line, col, path, v, valSel) {
			return
		}
		line = append(line, Span{Text: ":", Role: RolePunct, Selected: selected})
		w.lines = append(w.lines, line)
		start := len(w.lines)
		w.children(v, path, indent+w.cfg.Indent, valSel)
		w.blockRegion(joined, start, indent+w.cfg.Indent)
		return
	}

	text := scalar.Stringify(v)
	line = append(line,
		Span{Text: ": ", Role: RolePunct, Selected: selected},
		Span{Text: text, Role: RoleValue, Selected: valSel},
	)
	col += 2
	w.regions[position.MapKey(joined, position.KindValue)] = Region{
		Line: len(w.lines), Column: col, Width: runewidth.StringWidth(text), Height: 1,
	}
	w.lines = append(w.lines, line)
}

// blockRegion records the value region of a container laid out on the lines
// from start to the current end.
func (w *walker) blockRegion(path string, start, column int) {
	width := 0
	for _, l := range w.lines[start:] {
		if lw := runewidth.StringWidth(l.String()) - column; lw > width {
			width = lw
		}
	}
	w.regions[position.MapKey(path, position.KindValue)] = Region{
		Line: start, Column: column, Width: width, Height: len(w.lines) - start,
	}
}

func (w *walker) keySpans(label string, selected bool) []Span {
	if w.search == nil {
		return []Span{{Text: label, Role: RoleKey, Selected: selected}}
	}
	var spans []Span
	last := 0
	for _, loc := range w.search.FindAllStringIndex(label, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > last {
			spans = append(spans, Span{Text: label[last:loc[0]], Role: RoleKey, Selected: selected})
		}
		spans = append(spans, Span{Text: label[loc[0]:loc[1]], Role: RoleMatch, Selected: selected})
		last = loc[1]
	}
	if last < len(label) || len(spans) == 0 {
		spans = append(spans, Span{Text: label[last:], Role: RoleKey, Selected: selected})
	}
	return spans
}

// inline emits an all-scalar container on the header line when it fits.
// It reports whether it did.
func (w *walker) inline(line Line, col int, path []string, v any, selected bool) bool {
	if w.search != nil || w.cfg.InlineWidth <= 0 {
		return false
	}
	keys := tree.Keys(v)
	texts := make([]string, len(keys))
	_, isMap := v.(*tree.Map)
	total := col + 2 + 2
	for i, k := range keys {
		child, _ := tree.Child(v, k)
		if tree.IsContainer(child) && !tree.IsEmptyContainer(child) {
			return false
		}
		texts[i] = scalar.Stringify(child)
		total += runewidth.StringWidth(texts[i])
		if isMap {
			total += runewidth.StringWidth(KeyLabel(k)) + 2
		}
		if i > 0 {
			total += 2
		}
	}
	if total > w.cfg.InlineWidth {
		return false
	}
	if w.maxWidth > 0 && total > w.maxWidth {
		return false
	}

	lineNo := len(w.lines)
	joined := position.Join(path)
	open, closing := "[", "]"
	if isMap {
		open, closing = "{", "}"
	}
	line = append(line, Span{Text: ": ", Role: RolePunct})
	col += 2
	valueCol := col
	line = append(line, Span{Text: open, Role: RolePunct, Selected: selected})
	col++
	for i, k := range keys {
		if i > 0 {
			line = append(line, Span{Text: ", ", Role: RolePunct, Selected: selected})
			col += 2
		}
		childPath := position.Join(appendSeg(path, k))
		keySel := selected || w.isSelected(path, k, position.KindKey)
		valSel := selected || w.isSelected(path, k, position.KindValue)
		if isMap {
			label := KeyLabel(k)
			lw := runewidth.StringWidth(label)
			line = append(line,
				Span{Text: label, Role: RoleKey, Selected: keySel},
				Span{Text: ": ", Role: RolePunct, Selected: selected},
			)
			w.regions[position.MapKey(childPath, position.KindKey)] = Region{Line: lineNo, Column: col, Width: lw, Height: 1}
			col += lw + 2
		}
		tw := runewidth.StringWidth(texts[i])
		line = append(line, Span{Text: texts[i], Role: RoleValue, Selected: valSel || (!isMap && keySel)})
		valueRegion := Region{Line: lineNo, Column: col, Width: tw, Height: 1}
		w.regions[position.MapKey(childPath, position.KindValue)] = valueRegion
		if !isMap {
			w.regions[position.MapKey(childPath, position.KindKey)] = valueRegion
		}
		col += tw
	}
	line = append(line, Span{Text: closing, Role: RolePunct, Selected: selected})
	col++
	w.regions[position.MapKey(joined, position.KindValue)] = Region{
		Line: lineNo, Column: valueCol, Width: col - valueCol, Height: 1,
	}
	w.lines = append(w.lines, line)
	return true
}

func appendSeg(segs []string, k string) []string {
	out := make([]string, len(segs)+1)
	copy(out, segs)
	out[len(segs)] = k
	return out
}
