package syntax

import (
	"renamer/internal/source"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node types the grammar uses for identifier leaves.
const (
	KindIdent          = "identifier"
	KindTypeIdent      = "type_identifier"
	KindFieldIdent     = "field_identifier"
	KindShorthandField = "shorthand_field_identifier"
)

// IsName reports whether n is an identifier leaf of any flavour.
func IsName(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case KindIdent, KindTypeIdent, KindFieldIdent, KindShorthandField:
		return true
	}
	return false
}

// NameAt returns the name leaf covering off. A cursor placed right after the
// last character of a name still selects it.
func (t *Tree) NameAt(off uint32) (*sitter.Node, bool) {
	if n := t.leafAt(off); IsName(n) {
		return n, true
	}
	if off > 0 {
		if n := t.leafAt(off - 1); IsName(n) {
			return n, true
		}
	}
	return nil, false
}

// Name describes the name leaf under a cursor without exposing its node.
type Name struct {
	Span    source.Span
	ModItem bool // the name of a `mod` item
}

// LookupName is NameAt for concurrent callers: it holds the tree's lock
// while it walks nodes and returns plain values.
func (t *Tree) LookupName(off uint32) (Name, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.NameAt(off)
	if !ok {
		return Name{}, false
	}
	_, mod := ModItemOf(n)
	return Name{Span: t.Span(n), ModItem: mod}, true
}

// leafAt descends to the deepest node whose range contains off.
func (t *Tree) leafAt(off uint32) *sitter.Node {
	n := t.Root()
	if off >= n.EndByte() {
		return nil
	}
	for {
		var next *sitter.Node
		for i := range int(n.ChildCount()) {
			c := n.Child(i)
			if c.StartByte() <= off && off < c.EndByte() {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// Same reports whether a and b denote the same node.
func Same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// IsFieldOf reports whether n is the child stored under field of its parent.
func IsFieldOf(n *sitter.Node, parentType, field string) bool {
	p := n.Parent()
	return p != nil && p.Type() == parentType && Same(p.ChildByFieldName(field), n)
}
