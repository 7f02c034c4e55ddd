package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Walk visits n and its descendants in pre-order. Returning false from fn skips
// the children of the node just visited.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	cursor := sitter.NewTreeCursor(n)
	descend := fn(cursor.CurrentNode())
	for {
		if descend && cursor.GoToFirstChild() {
			descend = fn(cursor.CurrentNode())
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return
			}
		}
		descend = fn(cursor.CurrentNode())
	}
}

// NamedChildren returns the named children of n.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// ChildrenOfType returns the direct named children of n with type typ.
func ChildrenOfType(n *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range NamedChildren(n) {
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}
