package analysis

import (
	"slices"

	"renamer/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
)

// pathSegments flattens a path expression into its segment leaves. It returns
// nil for qualified paths such as `<T as Trait>::x`.
func pathSegments(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "scoped_identifier", "scoped_type_identifier":
		var segs []*sitter.Node
		if p := n.ChildByFieldName("path"); p != nil {
			if segs = pathSegments(p); segs == nil {
				return nil
			}
		}
		if name := n.ChildByFieldName("name"); name != nil {
			segs = append(segs, name)
		}
		return segs
	case "generic_type", "generic_type_with_turbofish":
		return pathSegments(n.ChildByFieldName("type"))
	case "identifier", "type_identifier", "self", "super", "crate":
		return []*sitter.Node{n}
	}
	return nil
}

type segRes struct {
	node *sitter.Node
	def  DefID
}

// pathRes is the outcome of resolving a path segment by segment.
type pathRes struct {
	resolved []segRes // named segments that resolved, keywords excluded
	complete bool
	module   ModuleID // module the path ends in, NoModule when it ends in a type
	owner    DefID    // type the path ends in
}

func (r pathRes) last() DefID {
	if len(r.resolved) == 0 {
		return NoDef
	}
	return r.resolved[len(r.resolved)-1].def
}

// resolvePath walks segs from module m. Leading segments look in the type
// namespace, the final one in ns. Resolution stops at the first unknown segment.
func (s *Snapshot) resolvePath(m ModuleID, tree *syntax.Tree, segs []*sitter.Node, self DefID, ns namespace) pathRes {
	res := pathRes{module: m, owner: NoDef}
	kwOnly := true
	for i, seg := range segs {
		text := tree.Text(seg)
		switch text {
		case "crate":
			if i != 0 {
				return res
			}
			res.module = s.modules[m].Root
			continue
		case "self":
			if i != 0 {
				return res
			}
			continue
		case "super":
			if !kwOnly {
				return res
			}
			p := s.modules[res.module].Parent
			if p == NoModule {
				return res
			}
			res.module = p
			continue
		case "Self":
			if i != 0 || self == NoDef {
				return res
			}
			res.module, res.owner = NoModule, self
			kwOnly = false
			continue
		}
		kwOnly = false

		want := typeNS
		if i == len(segs)-1 {
			want = ns
		}
		d := NoDef
		switch {
		case res.owner != NoDef:
			d = s.assocOf(res.owner, text)
		case res.module != NoModule:
			d = s.lookupIn(res.module, text, want)
			if d == NoDef && i == 0 {
				d = s.lookupIn(s.modules[m].Root, text, want)
			}
		}
		if d == NoDef {
			return res
		}
		res.resolved = append(res.resolved, segRes{node: seg, def: d})
		if def := s.defs[d]; def.Kind == DefModule {
			res.module, res.owner = def.Target, NoDef
		} else {
			res.module, res.owner = NoModule, d
		}
	}
	res.complete = true
	return res
}

func (s *Snapshot) assocOf(owner DefID, name string) DefID {
	id, ok := s.names.Find(name)
	if !ok {
		return NoDef
	}
	if ds := s.assoc[owner][id]; len(ds) > 0 {
		return ds[0]
	}
	return NoDef
}

// useLeaf is one imported path of a use tree after flattening use lists.
type useLeaf struct {
	module ModuleID
	tree   *syntax.Tree
	segs   []*sitter.Node
	alias  *sitter.Node
	glob   bool
	done   bool
}

func (b *builder) flattenUse(m ModuleID, tree *syntax.Tree, n *sitter.Node, prefix []*sitter.Node) {
	if n == nil {
		return
	}
	leaf := useLeaf{module: m, tree: tree}
	switch n.Type() {
	case "identifier", "scoped_identifier", "self", "crate", "super":
		leaf.segs = slices.Concat(prefix, pathSegments(n))
	case "use_as_clause":
		leaf.segs = slices.Concat(prefix, pathSegments(n.ChildByFieldName("path")))
		leaf.alias = n.ChildByFieldName("alias")
	case "scoped_use_list":
		inner := slices.Concat(prefix, pathSegments(n.ChildByFieldName("path")))
		b.flattenUse(m, tree, n.ChildByFieldName("list"), inner)
		return
	case "use_list":
		for _, c := range syntax.NamedChildren(n) {
			b.flattenUse(m, tree, c, prefix)
		}
		return
	case "use_wildcard":
		var path []*sitter.Node
		if n.NamedChildCount() > 0 {
			path = pathSegments(n.NamedChild(0))
		}
		leaf.segs = slices.Concat(prefix, path)
		leaf.glob = true
	default:
		return
	}
	if len(leaf.segs) == 0 {
		return
	}
	b.uses = append(b.uses, leaf)
}

// resolveImports binds use declarations until no more of them resolve, then
// records the references their paths make.
func (b *builder) resolveImports() {
	for {
		progress := false
		for i := range b.uses {
			u := &b.uses[i]
			if u.done {
				continue
			}
			if b.importLeaf(u, false) {
				u.done = true
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	for i := range b.uses {
		b.importLeaf(&b.uses[i], true)
	}
}

// importLeaf resolves one leaf. With record set it only records references;
// otherwise it binds the imported names and reports whether the leaf resolved.
func (b *builder) importLeaf(u *useLeaf, record bool) bool {
	s := b.s
	segs := u.segs
	lastSeg := segs[len(segs)-1]
	lastText := u.tree.Text(lastSeg)

	if u.glob {
		res := s.resolvePath(u.module, u.tree, segs, NoDef, typeNS)
		if record {
			b.recordPath(u.tree, res)
			return res.complete
		}
		if !res.complete || res.module == NoModule {
			return false
		}
		if res.module != u.module && !slices.Contains(s.modules[u.module].globs, res.module) {
			s.modules[u.module].globs = append(s.modules[u.module].globs, res.module)
		}
		return true
	}

	prefix := segs[:len(segs)-1]
	res := s.resolvePath(u.module, u.tree, prefix, NoDef, typeNS)
	if record {
		b.recordPath(u.tree, res)
	}
	if !res.complete {
		return false
	}

	var defs []DefID
	switch lastText {
	case "self":
		if len(prefix) == 0 {
			return true
		}
		if d := res.last(); d != NoDef {
			defs = []DefID{d}
		}
		lastSeg = prefix[len(prefix)-1]
	case "crate", "super":
		return true
	default:
		switch {
		case res.owner != NoDef:
			if d := s.assocOf(res.owner, lastText); d != NoDef {
				defs = []DefID{d}
			}
		case res.module != NoModule:
			defs = s.lookupAll(res.module, lastText)
			if len(defs) == 0 && len(prefix) == 0 {
				defs = s.lookupAll(s.modules[u.module].Root, lastText)
			}
		}
	}
	if len(defs) == 0 {
		return false
	}

	if record {
		if lastText != "self" {
			for _, d := range defs {
				s.addRef(d, u.tree.Span(lastSeg), Normal)
			}
		}
		return true
	}
	name := u.tree.Text(lastSeg)
	if u.alias != nil {
		name = u.tree.Text(u.alias)
	}
	if name == "_" {
		return true
	}
	for _, d := range defs {
		s.bind(u.module, name, d)
	}
	return true
}

func (b *builder) recordPath(tree *syntax.Tree, res pathRes) {
	for _, r := range res.resolved {
		b.s.addRef(r.def, tree.Span(r.node), Normal)
	}
}
