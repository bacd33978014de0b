// Package cel evaluates CEL expressions against a document bound to "_".
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"
)

// maxPrograms bounds the compiled program cache. Transform previews compile
// one expression per keystroke.
const maxPrograms = 64

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env      *cel.Env
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator with the string, encoder, list and math
// extensions.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, programs: map[string]cel.Program{}}, nil
}

// Evaluate runs expr with data bound to "_" and returns plain Go values.
// Example: "_.items.filter(x, x.available)".
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(map[string]any{"_": data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(out), nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	if prg, ok := e.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	if len(e.programs) >= maxPrograms {
		e.programs = map[string]cel.Program{}
	}
	e.programs[expr] = prg
	return prg, nil
}

// ToGo converts a CEL value into nil, bool, int64, uint64, float64, string,
// []any or map[string]any.
func ToGo(val ref.Val) any {
	switch v := val.(type) {
	case nil:
		return nil
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return string(v)
	case traits.Mapper:
		out := map[string]any{}
		it := v.Iterator()
		for it.HasNext() == types.True {
			k := it.Next()
			out[fmt.Sprint(k.Value())] = ToGo(v.Get(k))
		}
		return out
	case traits.Lister:
		var out []any
		it := v.Iterator()
		for it.HasNext() == types.True {
			out = append(out, ToGo(it.Next()))
		}
		if out == nil {
			out = []any{}
		}
		return out
	}
	return val.Value()
}

// Functions lists the callable names of the environment, without operators.
func (e *Evaluator) Functions() []string {
	seen := map[string]bool{}
	for _, fn := range e.env.Functions() {
		if !isOperator(fn.Name()) {
			seen[fn.Name()] = true
		}
	}
	for _, m := range e.env.Macros() {
		if !isOperator(m.Function()) {
			seen[m.Function()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "!") || strings.HasPrefix(name, "-") {
		return true
	}
	return strings.HasPrefix(name, "_") && (strings.HasSuffix(name, "_") || strings.Contains(name, "["))
}
