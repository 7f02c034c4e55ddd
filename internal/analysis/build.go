package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"renamer/internal/project"
	"renamer/internal/source"
	"renamer/internal/syntax"
	"renamer/internal/trace"

	sitter "github.com/smacker/go-tree-sitter"
)

// builder holds the transient state of one Snapshot construction.
type builder struct {
	s    *Snapshot
	errs []error

	uses    []useLeaf
	impls   []pendingItem
	typed   []pendingType // field types and function return types
	byField map[source.StringID][]DefID
	byMeth  map[source.StringID][]DefID
}

type pendingItem struct {
	module ModuleID
	tree   *syntax.Tree
	node   *sitter.Node
}

type pendingType struct {
	def    DefID
	module ModuleID
	tree   *syntax.Tree
	node   *sitter.Node
	self   DefID
	isFunc bool
}

func newSnapshot(proj *project.Project, files *source.FileSet, ids []source.FileID, trees map[source.FileID]*syntax.Tree) (*Snapshot, error) {
	s := &Snapshot{
		project:    proj,
		files:      files,
		ids:        ids,
		trees:      trees,
		fileRoot:   make(map[source.FileID]project.SourceRootID, len(ids)),
		names:      source.NewInterner(),
		fileModule: make(map[source.FileID]ModuleID, len(ids)),
		refs:       make(map[DefID][]Occurrence),
		sites:      make(map[siteKey][]site),
		fields:     make(map[DefID]map[source.StringID]DefID),
		assoc:      make(map[DefID]map[source.StringID][]DefID),
		fieldType:  make(map[DefID]DefID),
		localType:  make(map[DefID]DefID),
		fnReturn:   make(map[DefID]DefID),
	}
	for _, id := range ids {
		path := files.Get(id).Path
		root, ok := proj.RootOf(path)
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrOutsideRoots)
		}
		s.fileRoot[id] = root
	}
	return s, nil
}

// ErrOutsideRoots is returned for source files that no source root contains.
var ErrOutsideRoots = errors.New("file is outside every source root")

// build resolves every name of the snapshot. It runs single-threaded: trees
// are shared and materialize nodes lazily.
func (s *Snapshot) build(ctx context.Context) error {
	b := &builder{
		s:       s,
		byField: make(map[source.StringID][]DefID),
		byMeth:  make(map[source.StringID][]DefID),
	}

	passes := []struct {
		name string
		run  func()
	}{
		{"modules", b.buildModuleTree},
		{"items", b.collectItems},
		{"imports", b.resolveImports},
		{"impls", b.collectImpls},
		{"signatures", b.resolveSignatures},
		{"bodies", b.resolveBodies},
	}
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		span, _ := trace.Start(ctx, trace.ScopePass, "resolve/"+p.name)
		p.run()
		span.End("")
	}
	s.finish()
	return errors.Join(b.errs...)
}

// finish orders the references of every definition and drops duplicates.
func (s *Snapshot) finish() {
	for def, occ := range s.refs {
		slices.SortFunc(occ, compareOccurrences)
		s.refs[def] = slices.Compact(occ)
	}
}

func (s *Snapshot) newDef(d Def) DefID {
	d.ID = DefID(len(s.defs))
	s.defs = append(s.defs, d)
	k := keyOf(d.Span)
	s.sites[k] = append(s.sites[k], site{def: d.ID, decl: true, kind: d.DeclKind})
	return d.ID
}

// addRef records a usage of def. Usages at the declaration itself are ignored.
func (s *Snapshot) addRef(def DefID, sp source.Span, kind OccurrenceKind) {
	if def == NoDef || s.defs[def].Span == sp {
		return
	}
	s.refs[def] = append(s.refs[def], Occurrence{Span: sp, Kind: kind})
	k := keyOf(sp)
	s.sites[k] = append(s.sites[k], site{def: def, kind: kind})
}

func (s *Snapshot) bind(m ModuleID, name string, def DefID) {
	id := s.names.Intern(name)
	scope := s.modules[m].scope
	if slices.Contains(scope[id], def) {
		return
	}
	scope[id] = append(scope[id], def)
}

func (s *Snapshot) hasDecl(sp source.Span) bool {
	for _, st := range s.sites[keyOf(sp)] {
		if st.decl {
			return true
		}
	}
	return false
}

// namespace filters definitions during lookup.
type namespace func(DefKind) bool

func anyNS(DefKind) bool { return true }

func typeNS(k DefKind) bool { return k.IsType() }

func valueNS(k DefKind) bool {
	switch k {
	case DefFunction, DefConst, DefStatic, DefStruct, DefVariant, DefLocal:
		return true
	}
	return false
}

// patternNS holds what a bare identifier pattern refers to instead of binding.
func patternNS(k DefKind) bool {
	switch k {
	case DefConst, DefStatic, DefStruct, DefVariant:
		return true
	}
	return false
}

func macroNS(k DefKind) bool { return k == DefMacro }

// lookupIn finds name among the items and imports of module m, following glob imports.
func (s *Snapshot) lookupIn(m ModuleID, name string, ns namespace) DefID {
	id, ok := s.names.Find(name)
	if !ok || m == NoModule {
		return NoDef
	}
	return s.lookupID(m, id, ns, make(map[ModuleID]bool))
}

func (s *Snapshot) lookupID(m ModuleID, id source.StringID, ns namespace, seen map[ModuleID]bool) DefID {
	seen[m] = true
	md := &s.modules[m]
	for _, d := range md.scope[id] {
		if ns(s.defs[d].Kind) {
			return d
		}
	}
	for _, g := range md.globs {
		if seen[g] {
			continue
		}
		if d := s.lookupID(g, id, ns, seen); d != NoDef {
			return d
		}
	}
	return NoDef
}

// lookupAll returns every definition visible as name in m.
func (s *Snapshot) lookupAll(m ModuleID, name string) []DefID {
	id, ok := s.names.Find(name)
	if !ok {
		return nil
	}
	var out []DefID
	for _, ns := range []namespace{typeNS, valueNS, macroNS} {
		if d := s.lookupID(m, id, ns, make(map[ModuleID]bool)); d != NoDef && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// collectItems defines the items of every module that has a body.
func (b *builder) collectItems() {
	for i := range b.s.modules {
		md := &b.s.modules[i]
		if md.Items == nil {
			continue
		}
		tree := b.s.trees[md.File]
		for _, n := range syntax.NamedChildren(md.Items) {
			b.collectItem(md.ID, tree, n)
		}
	}
}

func (b *builder) collectItem(m ModuleID, tree *syntax.Tree, n *sitter.Node) {
	switch n.Type() {
	case "function_item":
		if d := b.define(m, tree, n, DefFunction, NoDef); d != NoDef {
			b.typed = append(b.typed, pendingType{def: d, module: m, tree: tree, node: n.ChildByFieldName("return_type"), self: NoDef, isFunc: true})
		}
	case "struct_item":
		st := b.define(m, tree, n, DefStruct, NoDef)
		b.collectFields(m, tree, n.ChildByFieldName("body"), st)
	case "union_item":
		u := b.define(m, tree, n, DefUnion, NoDef)
		b.collectFields(m, tree, n.ChildByFieldName("body"), u)
	case "enum_item":
		e := b.define(m, tree, n, DefEnum, NoDef)
		body := n.ChildByFieldName("body")
		if e == NoDef || body == nil {
			return
		}
		for _, v := range syntax.ChildrenOfType(body, "enum_variant") {
			vd := b.define(m, tree, v, DefVariant, e)
			b.collectFields(m, tree, v.ChildByFieldName("body"), vd)
		}
	case "trait_item":
		t := b.define(m, tree, n, DefTrait, NoDef)
		b.collectMembers(m, tree, n.ChildByFieldName("body"), t)
	case "type_item":
		b.define(m, tree, n, DefTypeAlias, NoDef)
	case "const_item":
		b.define(m, tree, n, DefConst, NoDef)
	case "static_item":
		b.define(m, tree, n, DefStatic, NoDef)
	case "macro_definition":
		b.define(m, tree, n, DefMacro, NoDef)
	case "impl_item":
		b.impls = append(b.impls, pendingItem{module: m, tree: tree, node: n})
	case "use_declaration":
		b.flattenUse(m, tree, n.ChildByFieldName("argument"), nil)
	}
}

// define creates the definition named by the "name" field of n. Members
// (owner != NoDef) are indexed on their owner instead of the module scope.
func (b *builder) define(m ModuleID, tree *syntax.Tree, n *sitter.Node, kind DefKind, owner DefID) DefID {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || !syntax.IsName(nameNode) {
		return NoDef
	}
	s := b.s
	name := tree.Text(nameNode)
	d := s.newDef(Def{
		Kind:   kind,
		Name:   name,
		Span:   tree.Span(nameNode),
		Module: m,
		Owner:  owner,
		Target: NoModule,
	})
	id := s.names.Intern(name)
	switch {
	case kind == DefField:
		if owner != NoDef {
			if s.fields[owner] == nil {
				s.fields[owner] = make(map[source.StringID]DefID)
			}
			s.fields[owner][id] = d
		}
		b.byField[id] = append(b.byField[id], d)
	case owner != NoDef:
		if s.assoc[owner] == nil {
			s.assoc[owner] = make(map[source.StringID][]DefID)
		}
		s.assoc[owner][id] = append(s.assoc[owner][id], d)
		if kind == DefMethod {
			b.byMeth[id] = append(b.byMeth[id], d)
		}
	case kind == DefMethod:
		b.byMeth[id] = append(b.byMeth[id], d)
	default:
		s.bind(m, name, d)
	}
	return d
}

func (b *builder) collectFields(m ModuleID, tree *syntax.Tree, body *sitter.Node, owner DefID) {
	if body == nil || owner == NoDef || body.Type() != "field_declaration_list" {
		return
	}
	for _, fd := range syntax.ChildrenOfType(body, "field_declaration") {
		if f := b.define(m, tree, fd, DefField, owner); f != NoDef {
			b.typed = append(b.typed, pendingType{def: f, module: m, tree: tree, node: fd.ChildByFieldName("type"), self: owner})
		}
	}
}

// collectMembers defines the associated items of a trait or impl body.
func (b *builder) collectMembers(m ModuleID, tree *syntax.Tree, body *sitter.Node, owner DefID) {
	if body == nil {
		return
	}
	for _, n := range syntax.NamedChildren(body) {
		switch n.Type() {
		case "function_item", "function_signature_item":
			if d := b.define(m, tree, n, DefMethod, owner); d != NoDef {
				b.typed = append(b.typed, pendingType{def: d, module: m, tree: tree, node: n.ChildByFieldName("return_type"), self: owner, isFunc: true})
			}
		case "const_item":
			if owner != NoDef {
				b.define(m, tree, n, DefConst, owner)
			}
		case "type_item", "associated_type":
			if owner != NoDef {
				b.define(m, tree, n, DefTypeAlias, owner)
			}
		}
	}
}

// collectImpls runs after imports so `impl Foo` can name an imported type.
func (b *builder) collectImpls() {
	for _, it := range b.impls {
		owner := b.s.resolveTypeQuiet(it.module, it.tree, it.node.ChildByFieldName("type"), NoDef)
		b.collectMembers(it.module, it.tree, it.node.ChildByFieldName("body"), owner)
	}
}

// resolveSignatures records declared field types and function return types
// for receiver inference.
func (b *builder) resolveSignatures() {
	s := b.s
	for _, p := range b.typed {
		t := s.resolveTypeQuiet(p.module, p.tree, p.node, p.self)
		if t == NoDef {
			continue
		}
		if p.isFunc {
			s.fnReturn[p.def] = t
		} else {
			s.fieldType[p.def] = t
		}
	}
}

// resolveTypeQuiet resolves a type expression to the nominal type it names
// without recording references.
func (s *Snapshot) resolveTypeQuiet(m ModuleID, tree *syntax.Tree, n *sitter.Node, self DefID) DefID {
	if n == nil {
		return NoDef
	}
	switch n.Type() {
	case "type_identifier", "identifier":
		name := tree.Text(n)
		if name == "Self" {
			return self
		}
		return s.lookupIn(m, name, typeNS)
	case "generic_type", "reference_type", "pointer_type":
		return s.resolveTypeQuiet(m, tree, n.ChildByFieldName("type"), self)
	case "scoped_type_identifier", "scoped_identifier":
		res := s.resolvePath(m, tree, pathSegments(n), self, typeNS)
		if !res.complete || len(res.resolved) == 0 || !syntax.Same(res.resolved[len(res.resolved)-1].node, n.ChildByFieldName("name")) {
			return NoDef
		}
		return res.last()
	}
	return NoDef
}
