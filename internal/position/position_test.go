package position

import (
	"reflect"
	"testing"
)

func TestSplitDottedAndBracketPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"user.name", []string{"user", "name"}},
		{"items.0.id", []string{"items", "0", "id"}},
		{"items[1]", []string{"items", "1"}},
		{`meta["a.b"].c`, []string{"meta", "a.b", "c"}},
		{`[""]`, []string{""}},
	}
	for _, tt := range tests {
		got := Split(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Split(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestJoinRoundTrip(t *testing.T) {
	cases := [][]string{
		{"a"},
		{"a", "b", "c"},
		{"list", "0"},
		{"a.b", "c"},
		{"x", `we"ird`, "[y]"},
		{"a", ""},
	}
	for _, segs := range cases {
		joined := Join(segs)
		if got := Split(joined); !reflect.DeepEqual(got, segs) {
			t.Fatalf("Split(Join(%#v)) = %#v via %q", segs, got, joined)
		}
	}
	if got := Join([]string{"a.b", "c"}); got != `["a.b"].c` {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestRootPosition(t *testing.T) {
	r := Root()
	if !r.IsRoot() {
		t.Fatal("Root() is not root")
	}
	if r.MapKey() != "@value" {
		t.Fatalf("root map key %q", r.MapKey())
	}
	if r.Segments() != nil {
		t.Fatalf("root segments %#v", r.Segments())
	}
	// the placeholder key differs from the root in its path
	p := Position{Index: "", Type: KindKey}
	if p.IsRoot() || p.MapKey() != `[""]@key` {
		t.Fatalf("placeholder key position %q", p.MapKey())
	}
}

func TestParentAndPatch(t *testing.T) {
	p := FromPath("a.b.c", KindValue)
	if p.Index != "c" || p.Nested != "a.b" {
		t.Fatalf("FromPath: %+v", p)
	}
	parent := p.Parent()
	if parent != (Position{Index: "b", Nested: "a", Type: KindKey}) {
		t.Fatalf("Parent: %+v", parent)
	}
	if top := FromPath("a", KindKey).Parent(); !top.IsRoot() {
		t.Fatalf("top-level parent %+v", top)
	}

	moved := IndexPatch("d", "").Apply(p)
	if moved.Index != "d" || moved.Nested != "a.b" || moved.Type != KindValue {
		t.Fatalf("IndexPatch kept the wrong fields: %+v", moved)
	}
	if Full(parent).Apply(p) != parent {
		t.Fatal("Full patch did not replace every field")
	}
	if got := p.String(); got != ".a.b.c [value]" {
		t.Fatalf("String() = %q", got)
	}
}
