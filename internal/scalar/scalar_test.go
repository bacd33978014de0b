package scalar

import (
	"testing"

	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"plain string", "hello", "hello"},
		{"empty string", "", `""`},
		{"string that looks like a bool", "true", `"true"`},
		{"string that looks like a number", "42", `"42"`},
		{"multi-line string", "a\nb", `"a\nb"`},
		{"empty map", tree.NewMap(), "{}"},
		{"empty list", []any{}, "[]"},
		{"flow map", tree.MapOf("a", 1, "b", "x"), "{a: 1, b: x}"},
		{"flow list", []any{"x", 2}, "[x, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, "", Parse(""))
	assert.Equal(t, 2, Parse("2"))
	assert.Equal(t, true, Parse("true"))
	assert.Nil(t, Parse("null"))
	assert.Equal(t, "hello world", Parse("hello world"))
	assert.Equal(t, "42", Parse(`"42"`))
	assert.Equal(t, "{unclosed", Parse("{unclosed"))

	m, ok := Parse("{b: 1, a: 2}").(*tree.Map)
	if assert.True(t, ok) {
		assert.Equal(t, []string{"b", "a"}, m.Keys())
	}
}

func TestStringifyParseRoundTrip(t *testing.T) {
	for _, v := range []any{"", "true", "a\nb", 3, false, nil, "with: colon"} {
		assert.Equal(t, v, Parse(Stringify(v)), "value %#v", v)
	}
}
