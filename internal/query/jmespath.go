package query

import (
	"math"

	"github.com/jmespath/go-jmespath"
	"github.com/oakwood-commons/ye/internal/tree"
)

// JMESPath is the default dialect.
type JMESPath struct{}

// NewJMESPath returns the JMESPath dialect.
func NewJMESPath() *JMESPath { return &JMESPath{} }

func (*JMESPath) Name() string { return "jmespath" }

// Evaluate compiles and searches expr. JMESPath compares numbers as
// float64, so integers are widened for the search and whole results are
// narrowed back unless the document already held that value as a float.
func (*JMESPath) Evaluate(expr string, root any) (any, error) {
	jp, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}
	plain, order := tree.ToPlain(root)
	n := numbers{floats: map[float64]struct{}{}}
	plain = n.widen(plain)
	out, err := jp.Search(plain)
	if err != nil {
		return nil, err
	}
	return tree.FromPlain(n.narrow(out), order), nil
}

// numbers remembers the whole-valued floats of the document so narrow can
// leave them alone. A value held both as an int and as a float stays float.
type numbers struct {
	floats map[float64]struct{}
}

// widen and narrow rewrite numbers in place, keeping the map identities that
// the order registry is keyed on.
func (n numbers) widen(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, c := range t {
			t[k] = n.widen(c)
		}
	case []any:
		for i, c := range t {
			t[i] = n.widen(c)
		}
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float64:
		if whole(t) {
			n.floats[t] = struct{}{}
		}
	}
	return v
}

func (n numbers) narrow(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, c := range t {
			t[k] = n.narrow(c)
		}
	case []any:
		for i, c := range t {
			t[i] = n.narrow(c)
		}
	case float64:
		if _, kept := n.floats[t]; whole(t) && !kept {
			return int(t)
		}
	}
	return v
}

func whole(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}
