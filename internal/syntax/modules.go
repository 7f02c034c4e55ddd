package syntax

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// ModItem is a `mod name;` or `mod name { ... }` declaration.
type ModItem struct {
	Node *sitter.Node
	Name *sitter.Node
	Body *sitter.Node // declaration_list, nil for an out-of-line module
}

// Inline reports whether the module body is written in place.
func (m ModItem) Inline() bool {
	return m.Body != nil
}

// AsModItem interprets n as a module declaration.
func AsModItem(n *sitter.Node) (ModItem, bool) {
	if n == nil || n.Type() != "mod_item" {
		return ModItem{}, false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return ModItem{}, false
	}
	return ModItem{Node: n, Name: name, Body: n.ChildByFieldName("body")}, true
}

// ModItemOf returns the declaration whose name is n.
func ModItemOf(name *sitter.Node) (ModItem, bool) {
	if !IsFieldOf(name, "mod_item", "name") {
		return ModItem{}, false
	}
	return AsModItem(name.Parent())
}

// EnclosingModItems lists the inline modules around n, outermost first.
func EnclosingModItems(n *sitter.Node) []ModItem {
	var out []ModItem
	for p := n.Parent(); p != nil; p = p.Parent() {
		if m, ok := AsModItem(p); ok && m.Inline() {
			out = append([]ModItem{m}, out...)
		}
	}
	return out
}

var modQuery = sync.OnceValues(func() (*sitter.Query, error) {
	return sitter.NewQuery([]byte(`(mod_item name: (identifier) @name) @item`), Language())
})

// ModItems returns every module declaration of the file in source order.
func (t *Tree) ModItems() ([]ModItem, error) {
	q, err := modQuery()
	if err != nil {
		return nil, fmt.Errorf("module query: %w", err)
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, t.Root())

	var out []ModItem
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if q.CaptureNameForId(c.Index) != "item" {
				continue
			}
			if item, ok := AsModItem(c.Node); ok {
				out = append(out, item)
			}
		}
	}
	return out, nil
}
