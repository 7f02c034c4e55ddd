package analysis

import (
	"renamer/internal/source"
	"renamer/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
)

// resolveBodies walks every item of every module and records the references
// made from signatures and bodies.
func (b *builder) resolveBodies() {
	for i := range b.s.modules {
		md := &b.s.modules[i]
		if md.Items == nil {
			continue
		}
		r := &resolver{s: b.s, b: b, tree: b.s.trees[md.File], module: md.ID, self: NoDef}
		for _, n := range syntax.NamedChildren(md.Items) {
			r.item(n)
		}
	}
}

// resolver walks one module's items with a stack of lexical scopes.
type resolver struct {
	s      *Snapshot
	b      *builder
	tree   *syntax.Tree
	module ModuleID
	scopes []map[source.StringID]DefID
	self   DefID // type of `Self` and `self`
}

func (r *resolver) push() {
	r.scopes = append(r.scopes, make(map[source.StringID]DefID))
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) local(name string) DefID {
	id, ok := r.s.names.Find(name)
	if !ok {
		return NoDef
	}
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if d, ok := r.scopes[i][id]; ok {
			return d
		}
	}
	return NoDef
}

func (r *resolver) declare(n *sitter.Node, kind DefKind, declKind OccurrenceKind) DefID {
	name := r.tree.Text(n)
	d := r.s.newDef(Def{
		Kind:     kind,
		Name:     name,
		Span:     r.tree.Span(n),
		Module:   r.module,
		Owner:    NoDef,
		Target:   NoModule,
		DeclKind: declKind,
	})
	if len(r.scopes) == 0 {
		r.push()
	}
	r.scopes[len(r.scopes)-1][r.s.names.Intern(name)] = d
	return d
}

func (r *resolver) ref(d DefID, n *sitter.Node, kind OccurrenceKind) {
	r.s.addRef(d, r.tree.Span(n), kind)
}

func (r *resolver) item(n *sitter.Node) {
	switch n.Type() {
	case "mod_item", "use_declaration", "macro_definition", "attribute_item", "inner_attribute_item",
		"extern_crate_declaration", "line_comment", "block_comment":
	case "function_item", "function_signature_item":
		r.function(n)
	case "struct_item", "union_item":
		r.fieldTypes(n.ChildByFieldName("body"))
	case "enum_item":
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		for _, v := range syntax.ChildrenOfType(body, "enum_variant") {
			r.fieldTypes(v.ChildByFieldName("body"))
			r.expr(v.ChildByFieldName("value"))
		}
	case "trait_item":
		saved := r.self
		r.self = r.declared(n.ChildByFieldName("name"))
		r.items(n.ChildByFieldName("body"))
		r.self = saved
	case "impl_item":
		r.typ(n.ChildByFieldName("trait"))
		ty := n.ChildByFieldName("type")
		r.typ(ty)
		saved := r.self
		r.self = r.s.resolveTypeQuiet(r.module, r.tree, ty, NoDef)
		r.items(n.ChildByFieldName("body"))
		r.self = saved
	case "const_item", "static_item":
		r.typ(n.ChildByFieldName("type"))
		r.expr(n.ChildByFieldName("value"))
	case "type_item":
		r.typ(n.ChildByFieldName("type"))
	case "macro_invocation":
		r.macro(n)
	default:
		r.expr(n)
	}
}

func (r *resolver) items(body *sitter.Node) {
	if body == nil {
		return
	}
	for _, c := range syntax.NamedChildren(body) {
		r.item(c)
	}
}

// declared returns the definition declared exactly at name.
func (r *resolver) declared(name *sitter.Node) DefID {
	if name == nil {
		return NoDef
	}
	for _, st := range r.s.sites[keyOf(r.tree.Span(name))] {
		if st.decl {
			return st.def
		}
	}
	return NoDef
}

func (r *resolver) function(n *sitter.Node) {
	depth := len(r.scopes)
	r.push()
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range syntax.NamedChildren(params) {
			if p.Type() != "parameter" {
				continue
			}
			ty := p.ChildByFieldName("type")
			r.typ(ty)
			r.pattern(p.ChildByFieldName("pattern"), r.s.resolveTypeQuiet(r.module, r.tree, ty, r.self))
		}
	}
	r.typ(n.ChildByFieldName("return_type"))
	r.expr(n.ChildByFieldName("body"))
	r.scopes = r.scopes[:depth]
}

func (r *resolver) fieldTypes(body *sitter.Node) {
	if body == nil {
		return
	}
	switch body.Type() {
	case "field_declaration_list":
		for _, fd := range syntax.ChildrenOfType(body, "field_declaration") {
			r.typ(fd.ChildByFieldName("type"))
		}
	case "ordered_field_declaration_list":
		for _, c := range syntax.NamedChildren(body) {
			if c.Type() != "visibility_modifier" && c.Type() != "attribute_item" {
				r.typ(c)
			}
		}
	}
}

// typ records references made by a type expression.
func (r *resolver) typ(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "type_identifier":
		name := r.tree.Text(n)
		if name == "Self" {
			return
		}
		r.ref(r.s.lookupIn(r.module, name, typeNS), n, Normal)
	case "scoped_type_identifier":
		r.path(n, typeNS)
	case "generic_type":
		r.typ(n.ChildByFieldName("type"))
		r.typ(n.ChildByFieldName("type_arguments"))
	case "lifetime", "primitive_type", "identifier", "visibility_modifier", "attribute_item":
	case "array_type":
		r.typ(n.ChildByFieldName("element"))
		r.expr(n.ChildByFieldName("length"))
	default:
		for _, c := range syntax.NamedChildren(n) {
			r.typ(c)
		}
	}
}

// path records the references of a scoped path and returns its final definition.
func (r *resolver) path(n *sitter.Node, ns namespace) DefID {
	segs := pathSegments(n)
	if segs == nil {
		for _, c := range syntax.NamedChildren(n) {
			r.typ(c)
		}
		return NoDef
	}
	res := r.s.resolvePath(r.module, r.tree, segs, r.self, ns)
	for _, sr := range res.resolved {
		r.ref(sr.def, sr.node, Normal)
	}
	if !res.complete {
		return NoDef
	}
	return res.last()
}

// value resolves an identifier in expression position: locals first, then items.
func (r *resolver) value(n *sitter.Node) DefID {
	name := r.tree.Text(n)
	if d := r.local(name); d != NoDef {
		return d
	}
	return r.s.lookupIn(r.module, name, valueNS)
}

func (r *resolver) exprs(n *sitter.Node) {
	for _, c := range syntax.NamedChildren(n) {
		r.expr(c)
	}
}

func (r *resolver) expr(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		r.ref(r.value(n), n, Normal)
	case "scoped_identifier":
		r.path(n, valueNS)
	case "type_identifier", "scoped_type_identifier", "generic_type":
		r.typ(n)
	case "generic_function":
		r.expr(n.ChildByFieldName("function"))
		r.typ(n.ChildByFieldName("type_arguments"))
	case "block", "unsafe_block", "async_block", "const_block", "loop_expression":
		r.block(n)
	case "let_declaration":
		ty := n.ChildByFieldName("type")
		r.typ(ty)
		value := n.ChildByFieldName("value")
		r.expr(value)
		r.expr(n.ChildByFieldName("alternative"))
		hint := r.s.resolveTypeQuiet(r.module, r.tree, ty, r.self)
		if hint == NoDef {
			hint = r.infer(value)
		}
		r.pattern(n.ChildByFieldName("pattern"), hint)
	case "let_condition":
		value := n.ChildByFieldName("value")
		r.expr(value)
		r.pattern(n.ChildByFieldName("pattern"), NoDef)
	case "closure_expression":
		depth := len(r.scopes)
		r.push()
		if params := n.ChildByFieldName("parameters"); params != nil {
			for _, p := range syntax.NamedChildren(params) {
				if p.Type() == "parameter" {
					ty := p.ChildByFieldName("type")
					r.typ(ty)
					r.pattern(p.ChildByFieldName("pattern"), r.s.resolveTypeQuiet(r.module, r.tree, ty, r.self))
					continue
				}
				r.pattern(p, NoDef)
			}
		}
		r.typ(n.ChildByFieldName("return_type"))
		r.expr(n.ChildByFieldName("body"))
		r.scopes = r.scopes[:depth]
	case "for_expression":
		r.expr(n.ChildByFieldName("value"))
		r.push()
		r.pattern(n.ChildByFieldName("pattern"), NoDef)
		r.expr(n.ChildByFieldName("body"))
		r.pop()
	case "if_expression", "while_expression":
		r.push()
		r.expr(n.ChildByFieldName("condition"))
		r.expr(n.ChildByFieldName("consequence"))
		r.expr(n.ChildByFieldName("body"))
		r.pop()
		r.expr(n.ChildByFieldName("alternative"))
	case "if_let_expression", "while_let_expression":
		r.expr(n.ChildByFieldName("value"))
		r.push()
		r.pattern(n.ChildByFieldName("pattern"), NoDef)
		r.expr(n.ChildByFieldName("consequence"))
		r.expr(n.ChildByFieldName("body"))
		r.pop()
		r.expr(n.ChildByFieldName("alternative"))
	case "match_expression":
		r.expr(n.ChildByFieldName("value"))
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		for _, arm := range syntax.ChildrenOfType(body, "match_arm") {
			r.push()
			if mp := arm.ChildByFieldName("pattern"); mp != nil {
				r.matchPattern(mp)
			}
			r.expr(arm.ChildByFieldName("value"))
			r.pop()
		}
	case "struct_expression":
		r.structExpr(n)
	case "field_expression":
		r.fieldExpr(n)
	case "macro_invocation":
		r.macro(n)
	case "type_cast_expression":
		r.expr(n.ChildByFieldName("value"))
		r.typ(n.ChildByFieldName("type"))
	case "function_item", "function_signature_item", "struct_item", "union_item", "enum_item",
		"impl_item", "trait_item", "const_item", "static_item", "type_item", "mod_item",
		"use_declaration", "macro_definition":
		r.item(n)
	case "lifetime", "label", "line_comment", "block_comment", "string_literal", "raw_string_literal",
		"char_literal", "integer_literal", "float_literal", "boolean_literal", "attribute_item",
		"inner_attribute_item", "self", "super", "crate", "metavariable", "field_identifier",
		"shorthand_field_identifier", "primitive_type", "visibility_modifier":
	default:
		r.exprs(n)
	}
}

// block walks a block after hoisting the functions, consts and statics it
// declares, which are visible in the whole block.
func (r *resolver) block(n *sitter.Node) {
	r.push()
	for _, c := range syntax.NamedChildren(n) {
		var kind DefKind
		switch c.Type() {
		case "function_item":
			kind = DefFunction
		case "const_item":
			kind = DefConst
		case "static_item":
			kind = DefStatic
		default:
			continue
		}
		if name := c.ChildByFieldName("name"); name != nil && !r.s.hasDecl(r.tree.Span(name)) {
			r.declare(name, kind, Normal)
		}
	}
	for _, c := range syntax.NamedChildren(n) {
		if c.Type() == "expression_statement" {
			r.exprs(c)
			continue
		}
		r.expr(c)
	}
	r.pop()
}

func (r *resolver) matchPattern(mp *sitter.Node) {
	if mp.Type() != "match_pattern" {
		r.pattern(mp, NoDef)
		return
	}
	cond := mp.ChildByFieldName("condition")
	for _, c := range syntax.NamedChildren(mp) {
		if cond != nil && syntax.Same(c, cond) {
			continue
		}
		r.pattern(c, NoDef)
	}
	r.expr(cond)
}

// pattern declares the bindings introduced by p. hint is the type of the
// matched value when known.
func (r *resolver) pattern(p *sitter.Node, hint DefID) {
	if p == nil {
		return
	}
	switch p.Type() {
	case "identifier":
		name := r.tree.Text(p)
		if d := r.s.lookupIn(r.module, name, patternNS); d != NoDef {
			r.ref(d, p, Normal)
			return
		}
		d := r.declare(p, DefLocal, Normal)
		if hint != NoDef {
			r.s.localType[d] = hint
		}
	case "mut_pattern", "ref_pattern", "reference_pattern", "parenthesized_pattern", "captured_pattern":
		for _, c := range syntax.NamedChildren(p) {
			if c.Type() == "mutable_specifier" {
				continue
			}
			r.pattern(c, hint)
		}
	case "tuple_pattern", "slice_pattern", "or_pattern":
		for _, c := range syntax.NamedChildren(p) {
			r.pattern(c, NoDef)
		}
	case "tuple_struct_pattern":
		ty := p.ChildByFieldName("type")
		r.patternPath(ty)
		for _, c := range syntax.NamedChildren(p) {
			if !syntax.Same(c, ty) {
				r.pattern(c, NoDef)
			}
		}
	case "struct_pattern":
		owner := r.patternPath(p.ChildByFieldName("type"))
		for _, fp := range syntax.ChildrenOfType(p, "field_pattern") {
			r.fieldPattern(fp, owner)
		}
	case "scoped_identifier":
		r.path(p, patternNS)
	case "match_pattern":
		r.matchPattern(p)
	case "_", "remaining_field_pattern", "mutable_specifier", "lifetime":
	default:
		r.expr(p)
	}
}

// patternPath resolves the type or variant named by a struct or tuple-struct pattern.
func (r *resolver) patternPath(n *sitter.Node) DefID {
	if n == nil {
		return NoDef
	}
	switch n.Type() {
	case "identifier", "type_identifier":
		name := r.tree.Text(n)
		if name == "Self" {
			return r.self
		}
		d := r.s.lookupIn(r.module, name, patternNS)
		if d == NoDef {
			d = r.s.lookupIn(r.module, name, typeNS)
		}
		r.ref(d, n, Normal)
		return d
	case "scoped_identifier", "scoped_type_identifier", "generic_type", "generic_type_with_turbofish":
		return r.path(n, anyNS)
	}
	return NoDef
}

func (r *resolver) fieldPattern(fp *sitter.Node, owner DefID) {
	name := fp.ChildByFieldName("name")
	if name == nil {
		return
	}
	text := r.tree.Text(name)
	field := r.fieldOf(owner, text)
	if name.Type() == syntax.KindShorthandField {
		r.ref(field, name, FieldShorthandForField)
		d := r.declare(name, DefLocal, FieldShorthandForLocal)
		if t, ok := r.s.fieldType[field]; ok && field != NoDef {
			r.s.localType[d] = t
		}
		return
	}
	r.ref(field, name, Normal)
	hint := NoDef
	if field != NoDef {
		if t, ok := r.s.fieldType[field]; ok {
			hint = t
		}
	}
	r.pattern(fp.ChildByFieldName("pattern"), hint)
}

func (r *resolver) structExpr(n *sitter.Node) {
	owner := r.patternPath(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, c := range syntax.NamedChildren(body) {
		switch c.Type() {
		case "shorthand_field_initializer":
			id := firstOfType(c, syntax.KindIdent)
			if id == nil {
				continue
			}
			r.ref(r.value(id), id, FieldShorthandForLocal)
			r.ref(r.fieldOf(owner, r.tree.Text(id)), id, FieldShorthandForField)
		case "field_initializer":
			if f := c.ChildByFieldName("field"); f != nil && f.Type() == syntax.KindFieldIdent {
				r.ref(r.fieldOf(owner, r.tree.Text(f)), f, Normal)
			}
			r.expr(c.ChildByFieldName("value"))
		default:
			r.expr(c)
		}
	}
}

func firstOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, c := range syntax.NamedChildren(n) {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func (r *resolver) fieldExpr(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	r.expr(value)
	field := n.ChildByFieldName("field")
	if field == nil || field.Type() != syntax.KindFieldIdent {
		return
	}
	recv := r.infer(value)
	name := r.tree.Text(field)
	if syntax.IsFieldOf(n, "call_expression", "function") {
		r.ref(r.methodOf(recv, name), field, Normal)
		return
	}
	r.ref(r.fieldOf(recv, name), field, Normal)
}

// fieldOf finds field name of owner. With an unknown owner a field name
// declared exactly once in the project is accepted.
func (r *resolver) fieldOf(owner DefID, name string) DefID {
	id, ok := r.s.names.Find(name)
	if !ok {
		return NoDef
	}
	if owner != NoDef {
		if d, ok := r.s.fields[owner][id]; ok {
			return d
		}
		return NoDef
	}
	if cands := r.b.byField[id]; len(cands) == 1 {
		return cands[0]
	}
	return NoDef
}

func (r *resolver) methodOf(owner DefID, name string) DefID {
	id, ok := r.s.names.Find(name)
	if !ok {
		return NoDef
	}
	if owner != NoDef {
		for _, d := range r.s.assoc[owner][id] {
			if r.s.defs[d].Kind == DefMethod {
				return d
			}
		}
	}
	if cands := r.b.byMeth[id]; len(cands) == 1 {
		return cands[0]
	}
	return NoDef
}

// infer guesses the nominal type of an expression from annotations, struct
// literals, field declarations and return types. It records nothing.
func (r *resolver) infer(n *sitter.Node) DefID {
	if n == nil {
		return NoDef
	}
	switch n.Type() {
	case "identifier":
		if d := r.local(r.tree.Text(n)); d != NoDef {
			if t, ok := r.s.localType[d]; ok {
				return t
			}
		}
	case "self":
		return r.self
	case "field_expression":
		f := n.ChildByFieldName("field")
		if f == nil {
			return NoDef
		}
		if field := r.fieldOf(r.infer(n.ChildByFieldName("value")), r.tree.Text(f)); field != NoDef {
			if t, ok := r.s.fieldType[field]; ok {
				return t
			}
		}
	case "struct_expression":
		name := n.ChildByFieldName("name")
		if name != nil && r.tree.Text(name) == "Self" {
			return r.self
		}
		return r.s.resolveTypeQuiet(r.module, r.tree, name, r.self)
	case "call_expression":
		fn := r.callee(n.ChildByFieldName("function"))
		if fn == NoDef {
			return NoDef
		}
		if t, ok := r.s.fnReturn[fn]; ok {
			return t
		}
	case "reference_expression", "try_expression", "parenthesized_expression", "unary_expression", "await_expression":
		if v := n.ChildByFieldName("value"); v != nil {
			return r.infer(v)
		}
		if n.NamedChildCount() > 0 {
			return r.infer(n.NamedChild(0))
		}
	}
	return NoDef
}

func (r *resolver) callee(fn *sitter.Node) DefID {
	if fn == nil {
		return NoDef
	}
	switch fn.Type() {
	case "identifier":
		return r.s.lookupIn(r.module, r.tree.Text(fn), valueNS)
	case "scoped_identifier", "generic_function":
		if fn.Type() == "generic_function" {
			return r.callee(fn.ChildByFieldName("function"))
		}
		res := r.s.resolvePath(r.module, r.tree, pathSegments(fn), r.self, valueNS)
		if res.complete {
			return res.last()
		}
	case "field_expression":
		f := fn.ChildByFieldName("field")
		if f != nil {
			return r.methodOf(r.infer(fn.ChildByFieldName("value")), r.tree.Text(f))
		}
	}
	return NoDef
}

// macro resolves the macro name and the identifiers of its token trees that
// name something in scope.
func (r *resolver) macro(n *sitter.Node) {
	if name := n.ChildByFieldName("macro"); name != nil && name.Type() == syntax.KindIdent {
		r.ref(r.s.lookupIn(r.module, r.tree.Text(name), macroNS), name, Normal)
	}
	for _, tt := range syntax.ChildrenOfType(n, "token_tree") {
		syntax.Walk(tt, func(c *sitter.Node) bool {
			if c.Type() != syntax.KindIdent {
				return true
			}
			name := r.tree.Text(c)
			d := r.local(name)
			if d == NoDef {
				d = r.s.lookupIn(r.module, name, anyNS)
			}
			r.ref(d, c, Normal)
			return false
		})
	}
}
