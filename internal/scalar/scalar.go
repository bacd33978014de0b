// Package scalar formats and parses editable leaf values using YAML flow
// syntax, so the text shown for a value is the text that re-enters it.
package scalar

import (
	"strings"

	"github.com/oakwood-commons/ye/internal/tree"
	"gopkg.in/yaml.v3"
)

// Stringify renders v on a single line.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case *tree.Map:
		if t.Len() == 0 {
			return "{}"
		}
	case []any:
		if len(t) == 0 {
			return "[]"
		}
	}

	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return "<" + err.Error() + ">"
	}
	flatten(&n)
	out, err := yaml.Marshal(&n)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return strings.TrimSuffix(string(out), "\n")
}

// flatten forces flow style so nested content stays on one line.
func flatten(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = yaml.FlowStyle
	case yaml.ScalarNode:
		if n.Tag == "!!str" && strings.ContainsAny(n.Value, "\n\r\t") {
			n.Style = yaml.DoubleQuotedStyle
		}
	}
	for _, c := range n.Content {
		flatten(c)
	}
}

// Parse reads text typed by the user. Empty input is the empty string and
// text that is not valid YAML is kept verbatim.
func Parse(text string) any {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(text), &n); err != nil {
		return text
	}
	v, err := tree.FromYAML(&n)
	if err != nil {
		return text
	}
	return v
}
