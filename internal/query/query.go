// Package query runs transform expressions against a document. The default
// dialect is JMESPath; CEL, gjson paths and expr-lang are also available.
package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/oakwood-commons/ye/internal/tree"
)

// ErrUnknownDialect is returned for a dialect name that is not registered.
var ErrUnknownDialect = errors.New("unknown query dialect")

// DefaultDialect is used when no dialect is configured.
const DefaultDialect = "jmespath"

// Dialect evaluates expressions of one query language. Evaluate receives and
// returns document trees.
type Dialect interface {
	Name() string
	Evaluate(expr string, root any) (any, error)
}

// Status classifies a transform result.
type Status int

const (
	Found Status = iota
	NotFound
	Failed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of Transform. Tree is set only when Status is Found.
type Result struct {
	Tree   any
	Status Status
	Err    error
}

// Transform evaluates expr against root. Empty and falsy results are
// NotFound; evaluation errors are Failed. root is never modified.
func Transform(root any, expr string, d Dialect) Result {
	out, err := d.Evaluate(expr, root)
	if err != nil {
		return Result{Status: Failed, Err: err}
	}
	if Falsy(out) {
		return Result{Status: NotFound}
	}
	return Result{Tree: out, Status: Found}
}

// Falsy reports nil, false, "", numeric zero and empty containers.
func Falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case *tree.Map:
		return t.Len() == 0
	case []any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}

// Registry holds the available dialects by name.
type Registry struct {
	dialects map[string]Dialect
}

// NewRegistry registers dialects; a later dialect with the same name wins.
func NewRegistry(dialects ...Dialect) *Registry {
	r := &Registry{dialects: map[string]Dialect{}}
	for _, d := range dialects {
		r.dialects[d.Name()] = d
	}
	return r
}

// DefaultRegistry returns a registry with every built-in dialect.
func DefaultRegistry() (*Registry, error) {
	c, err := NewCEL()
	if err != nil {
		return nil, err
	}
	return NewRegistry(NewJMESPath(), c, NewGJSON(), NewExpr()), nil
}

// Lookup returns the dialect called name.
func (r *Registry) Lookup(name string) (Dialect, error) {
	if name == "" {
		name = DefaultDialect
	}
	d, ok := r.dialects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownDialect, name, r.Names())
	}
	return d, nil
}

// Names lists the registered dialects in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.dialects))
	for n := range r.dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
