package cursor

import (
	"errors"
	"testing"

	"github.com/oakwood-commons/ye/internal/position"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc() any {
	return tree.MapOf("a", 1, "b", tree.MapOf("c", 2, "d", 3), "e", tree.NewMap())
}

func TestSelectMergesAndValidates(t *testing.T) {
	c := New()
	root := doc()

	p, ok := c.Select(root, position.Full(position.At(nil, "a", position.KindKey)))
	require.True(t, ok)
	assert.Equal(t, position.At(nil, "a", position.KindKey), p)

	// omitted fields keep their value
	p, ok = c.Select(root, position.Patch{Type: position.KindValue})
	require.True(t, ok)
	assert.Equal(t, position.At(nil, "a", position.KindValue), p)

	_, ok = c.Select(root, position.IndexPatch("missing", ""))
	assert.False(t, ok)
	assert.Equal(t, p, c.Position())
}

func TestSelectAutoDescends(t *testing.T) {
	c := New()
	p, ok := c.Select(doc(), position.Full(position.At(nil, "b", position.KindValue)))
	require.True(t, ok)
	assert.Equal(t, position.At([]string{"b"}, "c", position.KindKey), p)

	// empty containers are selected literally
	p, ok = c.Select(doc(), position.Full(position.At(nil, "e", position.KindValue)))
	require.True(t, ok)
	assert.Equal(t, position.At(nil, "e", position.KindValue), p)
}

func TestSelectIsIdempotent(t *testing.T) {
	root := doc()
	frame := render.New(render.DefaultConfig()).Render(root, render.Options{})
	c := New()
	_, ok := c.Select(root, position.Full(position.At([]string{"b"}, "d", position.KindValue)))
	require.True(t, ok)

	first, ok1 := c.Select(root, position.Full(c.Position()))
	require.NoError(t, c.Place(frame))
	box1, _ := c.Box()
	second, ok2 := c.Select(root, position.Full(c.Position()))
	require.NoError(t, c.Place(frame))
	box2, _ := c.Box()

	assert.True(t, ok1 && ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, box1, box2)
}

func TestPlaceReportsDesync(t *testing.T) {
	c := New()
	c.Set(position.At(nil, "ghost", position.KindKey))
	frame := render.New(render.DefaultConfig()).Render(doc(), render.Options{})

	err := c.Place(frame)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDesync))
	_, ok := c.Box()
	assert.False(t, ok)
}

func TestRefreshBubblesToLiveAncestor(t *testing.T) {
	c := New()
	root := doc()
	_, ok := c.Select(root, position.Full(position.At([]string{"b"}, "d", position.KindKey)))
	require.True(t, ok)

	edited, err := tree.DeleteAt(root, []string{"b"}, "d")
	require.NoError(t, err)
	frame := render.New(render.DefaultConfig()).Render(edited, render.Options{})
	require.NoError(t, c.Refresh(edited, frame))
	assert.Equal(t, position.At(nil, "b", position.KindKey), c.Position())

	box, ok := c.Box()
	require.True(t, ok)
	assert.Equal(t, render.Region{Line: 1, Column: 0, Width: 1, Height: 1}, box)
}

func TestRootIsAlwaysLive(t *testing.T) {
	for _, root := range []any{doc(), []any{}, "x", nil} {
		p, ok := Resolve(root, position.Root())
		assert.True(t, ok)
		assert.True(t, p.IsRoot())
	}
}
