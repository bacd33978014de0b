package query

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/oakwood-commons/ye/internal/tree"
)

// Expr evaluates expr-lang expressions. Top-level keys of a mapping document
// are variables; the whole document is also bound to "_".
type Expr struct {
	programs map[string]*vm.Program
}

// NewExpr returns the expr-lang dialect.
func NewExpr() *Expr {
	return &Expr{programs: map[string]*vm.Program{}}
}

func (*Expr) Name() string { return "expr" }

func (e *Expr) Evaluate(code string, root any) (any, error) {
	plain, order := tree.ToPlain(root)
	env := map[string]any{}
	if m, ok := plain.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	}
	env["_"] = plain

	program, ok := e.programs[code]
	if !ok {
		var err error
		program, err = expr.Compile(code, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, err
		}
		if len(e.programs) >= 64 {
			e.programs = map[string]*vm.Program{}
		}
		e.programs[code] = program
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, err
	}
	return tree.FromPlain(out, order), nil
}
