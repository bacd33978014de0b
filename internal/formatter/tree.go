// Package formatter prints documents for non-interactive output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/ye/internal/scalar"
	"github.com/oakwood-commons/ye/internal/tree"
)

const defaultMaxArrayInline = 3

// TreeOptions controls tree output.
type TreeOptions struct {
	// NoValues prints keys only.
	NoValues bool
	// MaxDepth limits nesting (0 = unlimited).
	MaxDepth int
	// ExpandArrays lists every element instead of inlining short scalar lists.
	ExpandArrays bool
	// MaxArrayInline is how many scalars a list may hold and still print
	// inline. Defaults to 3.
	MaxArrayInline int
	// MaxStringLen truncates long scalars. 0 or less disables truncation.
	MaxStringLen int
}

// FormatAsTree renders a document as an ASCII tree. Keys keep document
// order; list elements are labeled by index.
func FormatAsTree(root any, opts TreeOptions) string {
	if opts.MaxArrayInline == 0 {
		opts.MaxArrayInline = defaultMaxArrayInline
	}
	t := treeprint.New()
	if !tree.IsContainer(root) {
		t.AddNode(opts.scalar(root))
		return t.String()
	}
	addChildren(t, root, opts, 0)
	return t.String()
}

func addChildren(branch treeprint.Tree, container any, opts TreeOptions, depth int) {
	for _, key := range tree.Keys(container) {
		child, _ := tree.Child(container, key)
		label := key
		if _, ok := container.([]any); ok {
			label = "[" + key + "]"
		}
		addNode(branch, label, child, opts, depth)
	}
}

func addNode(branch treeprint.Tree, label string, v any, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		branch.AddNode(label + ": ...")
		return
	}
	switch {
	case tree.IsEmptyContainer(v) || !tree.IsContainer(v):
		opts.leaf(branch, label, opts.scalar(v))
	case isInlineList(v, opts):
		list := v.([]any)
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = opts.scalar(e)
		}
		opts.leaf(branch, label, "["+strings.Join(parts, ", ")+"]")
	case isScalarList(v) && !opts.ExpandArrays:
		opts.leaf(branch, label, fmt.Sprintf("[%d items]", len(v.([]any))))
	default:
		addChildren(branch.AddBranch(label), v, opts, depth+1)
	}
}

func (o TreeOptions) leaf(branch treeprint.Tree, label, value string) {
	if o.NoValues {
		branch.AddNode(label)
		return
	}
	branch.AddNode(label + ": " + value)
}

func (o TreeOptions) scalar(v any) string {
	s := scalar.Stringify(v)
	if o.MaxStringLen <= 0 || len(s) <= o.MaxStringLen {
		return s
	}
	if o.MaxStringLen <= 3 {
		return "..."
	}
	return s[:o.MaxStringLen-3] + "..."
}

func isScalarList(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range list {
		if tree.IsContainer(e) {
			return false
		}
	}
	return true
}

func isInlineList(v any, opts TreeOptions) bool {
	return !opts.ExpandArrays && isScalarList(v) && len(v.([]any)) <= opts.MaxArrayInline
}
