package query

import (
	"encoding/json"
	"fmt"

	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// GJSON evaluates gjson path syntax ("items.#.name", "items.#(age>30)")
// over the JSON encoding of the document.
type GJSON struct{}

// NewGJSON returns the gjson dialect.
func NewGJSON() *GJSON { return &GJSON{} }

func (*GJSON) Name() string { return "gjson" }

func (*GJSON) Evaluate(expr string, root any) (any, error) {
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	res := gjson.GetBytes(raw, expr)
	if !res.Exists() {
		return nil, nil
	}
	switch res.Type {
	case gjson.Null:
		return nil, nil
	case gjson.False:
		return false, nil
	case gjson.True:
		return true, nil
	case gjson.String:
		return res.Str, nil
	}
	// JSON is a YAML subset; decoding through yaml.Node keeps object order.
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(res.Raw), &n); err != nil {
		return nil, fmt.Errorf("decode gjson result: %w", err)
	}
	return tree.FromYAML(&n)
}
