package render

import (
	"strings"
	"testing"

	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() any {
	return tree.MapOf(
		"a", 1,
		"b", tree.MapOf(
			"c", true,
			"d", []any{"x", "y"},
		),
	)
}

func TestRenderLayout(t *testing.T) {
	f := New(DefaultConfig()).Render(sample(), Options{})

	assert.Equal(t, strings.Join([]string{
		" 1 a: 1",
		" 2 b:",
		" 3   c: true",
		" 4   d: [x, y]",
	}, "\n"), f.Text)
	assert.Equal(t, 3, f.Gutter)

	want := map[string]Region{
		"a@key":       {Line: 0, Column: 0, Width: 1, Height: 1},
		"a@value":     {Line: 0, Column: 3, Width: 1, Height: 1},
		"b@key":       {Line: 1, Column: 0, Width: 1, Height: 1},
		"b@value":     {Line: 2, Column: 2, Width: 9, Height: 2},
		"b.c@key":     {Line: 2, Column: 2, Width: 1, Height: 1},
		"b.c@value":   {Line: 2, Column: 5, Width: 4, Height: 1},
		"b.d@value":   {Line: 3, Column: 5, Width: 6, Height: 1},
		"b.d.0@key":   {Line: 3, Column: 6, Width: 1, Height: 1},
		"b.d.0@value": {Line: 3, Column: 6, Width: 1, Height: 1},
		"b.d.1@value": {Line: 3, Column: 9, Width: 1, Height: 1},
		"@value":      {Line: 0, Column: 0, Width: 11, Height: 4},
	}
	for k, r := range want {
		got, ok := f.Region(k)
		require.True(t, ok, "missing region %s", k)
		assert.Equal(t, r, got, "region %s", k)
	}
}

func TestRenderBlockListsAndEmptyContainers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InlineWidth = 0
	root := tree.MapOf("l", []any{"x", tree.NewMap()}, "e", []any{})
	f := New(cfg).Render(root, Options{})

	assert.Equal(t, strings.Join([]string{
		" 1 l:",
		" 2   0: x",
		" 3   1: {}",
		" 4 e: []",
	}, "\n"), f.Text)
	r, ok := f.Region("l.1@value")
	require.True(t, ok)
	assert.Equal(t, Region{Line: 2, Column: 5, Width: 2, Height: 1}, r)
}

func TestRenderScalarRoot(t *testing.T) {
	f := New(DefaultConfig()).Render(42, Options{Height: 3})
	assert.Equal(t, " 1 42\n~\n~", f.Text)
	r, ok := f.Region("@value")
	require.True(t, ok)
	assert.Equal(t, Region{Width: 2, Height: 1}, r)
	assert.Equal(t, 3, f.Height())
}

func TestRenderRegionsCoverEveryPosition(t *testing.T) {
	roots := []any{
		sample(),
		tree.MapOf("", "", "k", []any{tree.MapOf("deep", []any{1, 2})}, "x.y", nil),
		[]any{"a", []any{}, tree.MapOf("z", 1)},
		tree.NewMap(),
		"scalar",
	}
	for _, cfg := range []Config{DefaultConfig(), {Indent: 4}} {
		r := New(cfg)
		for _, root := range roots {
			f := r.Render(root, Options{})
			for _, p := range allPositions(root, nil) {
				_, ok := f.Region(p.MapKey())
				assert.True(t, ok, "no region for %s in %s", p.MapKey(), f.Text)
			}
		}
	}
}

func allPositions(v any, segs []string) []position.Position {
	out := []position.Position{}
	if segs == nil {
		out = append(out, position.Root())
	}
	for _, k := range tree.Keys(v) {
		child, _ := tree.Child(v, k)
		out = append(out,
			position.At(segs, k, position.KindKey),
			position.At(segs, k, position.KindValue),
		)
		if tree.IsContainer(child) {
			out = append(out, allPositions(child, append(append([]string{}, segs...), k))...)
		}
	}
	return out
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New(DefaultConfig())
	sel := position.At([]string{"b"}, "c", position.KindValue)
	a := r.Render(sample(), Options{Selection: &sel, Height: 10})
	b := r.Render(sample(), Options{Selection: &sel, Height: 10})
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Regions, b.Regions)
}

func TestRenderSelectionMarksToken(t *testing.T) {
	sel := position.At(nil, "a", position.KindValue)
	f := New(DefaultConfig()).Render(sample(), Options{Selection: &sel})

	var selected []string
	for _, l := range f.Lines {
		for _, s := range l {
			if s.Selected {
				selected = append(selected, s.Text)
			}
		}
	}
	assert.Equal(t, []string{"1"}, selected)

	plain := New(DefaultConfig()).Render(sample(), Options{})
	assert.Equal(t, plain.Text, f.Text)
}

func TestRenderSearchPreview(t *testing.T) {
	root := tree.MapOf("bar", 1, "baz", 2, "qux", 3)
	f := New(DefaultConfig()).Render(root, Options{Search: "ba"})

	assert.Equal(t, []string{"bar", "baz"}, f.PreviewMatches)
	assert.NotContains(t, f.Text, "qux")
	assert.Equal(t, RoleMatch, f.Lines[0][0].Role)
	assert.Equal(t, "ba", f.Lines[0][0].Text)
}

func TestRenderSearchKeepsAncestorsAndDescendants(t *testing.T) {
	root := tree.MapOf(
		"a", tree.MapOf("bar", tree.MapOf("inner", 1), "q", 2),
		"z", 3,
		"BARN", 4,
	)
	f := New(DefaultConfig()).Render(root, Options{Search: "bar"})

	assert.Equal(t, []string{"a.bar", "BARN"}, f.PreviewMatches)
	assert.Equal(t, strings.Join([]string{
		" 1 a:",
		" 2   bar:",
		" 3     inner: 1",
		" 4 BARN: 4",
	}, "\n"), f.Text)
}

func TestRenderInvalidPatternIsLiteral(t *testing.T) {
	root := tree.MapOf("a(b", 1, "ab", 2)
	f := New(DefaultConfig()).Render(root, Options{Search: "a("})
	assert.Equal(t, []string{"a(b"}, f.PreviewMatches)
}

func TestRenderOverlay(t *testing.T) {
	overlay := func(root any) any {
		out, err := tree.InsertAfterAt(root, nil, "a", "", "")
		if err != nil {
			return root
		}
		return out
	}
	f := New(DefaultConfig()).Render(tree.MapOf("a", 1, "c", 3), Options{Overlay: overlay})
	assert.Equal(t, " 1 a: 1\n 2 \"\": \"\"\n 3 c: 3", f.Text)
	_, ok := f.Region(`[""]@key`)
	assert.True(t, ok)
}
