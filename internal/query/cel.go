package query

import (
	"github.com/oakwood-commons/ye/internal/cel"
	"github.com/oakwood-commons/ye/internal/tree"
)

// CEL evaluates Common Expression Language with the document bound to "_".
type CEL struct {
	eval *cel.Evaluator
}

// NewCEL builds the CEL dialect.
func NewCEL() (*CEL, error) {
	e, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &CEL{eval: e}, nil
}

func (*CEL) Name() string { return "cel" }

func (c *CEL) Evaluate(expr string, root any) (any, error) {
	plain, order := tree.ToPlain(root)
	out, err := c.eval.Evaluate(expr, plain)
	if err != nil {
		return nil, err
	}
	return tree.FromPlain(out, order), nil
}

// Functions lists CEL functions for help output.
func (c *CEL) Functions() []string {
	return c.eval.Functions()
}
