package rename

import (
	"renamer/internal/source"
	"renamer/internal/syntax"
)

type moduleTarget struct {
	span source.Span
}

// locateModule reports whether the name at pos is the name of a `mod` item.
// Such a request is a module rename even if the name also resolves as a reference.
func locateModule(tree *syntax.Tree, pos Position) (moduleTarget, bool) {
	name, ok := tree.LookupName(pos.Offset)
	if !ok || !name.ModItem {
		return moduleTarget{}, false
	}
	return moduleTarget{span: name.Span}, true
}
