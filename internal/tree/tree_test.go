package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := MapOf("zeta", 1, "alpha", 2, "mid", 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())

	m.Set("alpha", 20)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys(), "replacing a value keeps its slot")
	v, _ := m.Get("alpha")
	assert.Equal(t, 20, v)
}

func TestMapRenameRoundTrip(t *testing.T) {
	m := MapOf("a", 1, "b", 2, "c", 3)
	require.NoError(t, m.Rename("b", "renamed"))
	assert.Equal(t, []string{"a", "renamed", "c"}, m.Keys())
	require.NoError(t, m.Rename("renamed", "b"))
	assert.True(t, Equal(MapOf("a", 1, "b", 2, "c", 3), m))
}

func TestMapRenameCollisionOverwrites(t *testing.T) {
	m := MapOf("a", 1, "b", 2, "c", 3)
	require.NoError(t, m.Rename("c", "a"))
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, 3, v)
}

func TestMapRenameMissing(t *testing.T) {
	err := MapOf("a", 1).Rename("nope", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapInsertAfter(t *testing.T) {
	m := MapOf("a", 1, "c", 3)
	m.InsertAfter("a", "b", 2)
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	m.InsertAfter("", "first", 0)
	assert.Equal(t, []string{"first", "a", "b", "c"}, m.Keys())

	m.InsertAfter("missing", "last", 9)
	assert.Equal(t, "last", m.Keys()[m.Len()-1])
}

func TestMapInsertAfterExistingKeyKeepsValue(t *testing.T) {
	m := MapOf("a", 1, "b", 2, "c", 3)
	m.InsertAfter("a", "c", "")
	assert.Equal(t, []string{"a", "c", "b"}, m.Keys())
	v, ok := m.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	m.InsertAfter("b", "a", "")
	assert.Equal(t, []string{"c", "b", "a"}, m.Keys())
	v, _ = m.Get("a")
	assert.Equal(t, 1, v)
}

func TestMapJSONAndYAMLKeepOrder(t *testing.T) {
	m := MapOf("z", 1, "a", MapOf("k", true, "b", nil), "list", []any{"x", 2})
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"k":true,"b":null},"list":["x",2]}`, string(out))

	y, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "z: 1\na:\n    k: true\n    b: null\nlist:\n    - x\n    - 2\n", string(y))
}

func TestLookup(t *testing.T) {
	root := MapOf("items", []any{MapOf("id", 7)})
	v, err := Lookup(root, []string{"items", "0", "id"})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Lookup(root, []string{"items", "5"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Lookup(root, []string{"items", "0", "id", "deeper"})
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestMutationsAreCopyOnWrite(t *testing.T) {
	inner := MapOf("x", 1, "y", 2)
	root := MapOf("keep", MapOf("k", 1), "inner", inner)
	snapshot := Clone(root)

	updated, err := SetAt(root, []string{"inner"}, "x", 10)
	require.NoError(t, err)
	updated, err = RenameAt(updated, []string{"inner"}, "y", "why")
	require.NoError(t, err)
	updated, err = InsertAfterAt(updated, []string{"inner"}, "x", "new", "v")
	require.NoError(t, err)
	updated, err = DeleteAt(updated, nil, "keep")
	require.NoError(t, err)

	assert.True(t, Equal(snapshot, root), "original tree must not change")
	assert.True(t, Equal(MapOf("inner", MapOf("x", 10, "new", "v", "why", 2)), updated))
}

func TestListMutations(t *testing.T) {
	root := MapOf("l", []any{"a", "b", "c"})
	updated, err := InsertAfterAt(root, []string{"l"}, "0", "", "ins")
	require.NoError(t, err)
	assert.True(t, Equal(MapOf("l", []any{"a", "ins", "b", "c"}), updated))

	updated, err = DeleteAt(updated, []string{"l"}, "2")
	require.NoError(t, err)
	assert.True(t, Equal(MapOf("l", []any{"a", "ins", "c"}), updated))

	_, err = RenameAt(updated, []string{"l"}, "0", "x")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPlainRoundTripKeepsOrder(t *testing.T) {
	root := MapOf("z", MapOf("b", 1, "a", 2), "a", []any{MapOf("q", 1, "p", 2)})
	plain, order := ToPlain(root)
	back := FromPlain(plain, order)
	assert.True(t, Equal(root, back))

	sub := plain.(map[string]any)["z"]
	assert.Equal(t, []string{"b", "a"}, Keys(FromPlain(sub, order)))

	fresh := FromPlain(map[string]any{"b": 1, "a": 2}, order)
	assert.Equal(t, []string{"a", "b"}, Keys(fresh), "maps built by queries are sorted")
}

func TestFromYAMLKeepsOrder(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("zeta: 1\nalpha:\n  when: 2024-01-02\n  list: [a, true, null]\n"), &doc))

	v, err := FromYAML(&doc)
	require.NoError(t, err)
	m := v.(*Map)
	assert.Equal(t, []string{"zeta", "alpha"}, m.Keys())

	inner, err := Lookup(v, []string{"alpha", "when"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", inner)

	list, err := Lookup(v, []string{"alpha", "list"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", true, nil}, list)
}
