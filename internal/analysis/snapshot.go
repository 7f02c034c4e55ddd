package analysis

import (
	"cmp"
	"slices"

	"renamer/internal/project"
	"renamer/internal/source"
	"renamer/internal/syntax"
)

// Position is a byte offset inside a file of a Snapshot.
type Position struct {
	File   source.FileID
	Offset uint32
}

// Snapshot is an immutable, fully resolved view of a project at one moment.
// Queries only read it, and the few that touch syntax trees go through
// syntax.Tree.LookupName, so any number of goroutines may query one Snapshot.
type Snapshot struct {
	project  *project.Project
	files    *source.FileSet
	ids      []source.FileID
	trees    map[source.FileID]*syntax.Tree
	fileRoot map[source.FileID]project.SourceRootID
	names    *source.Interner

	defs       []Def
	modules    []ModuleData
	fileModule map[source.FileID]ModuleID
	refs       map[DefID][]Occurrence
	sites      map[siteKey][]site

	fields    map[DefID]map[source.StringID]DefID
	assoc     map[DefID]map[source.StringID][]DefID // variants, methods, associated consts
	fieldType map[DefID]DefID
	localType map[DefID]DefID
	fnReturn  map[DefID]DefID
}

type siteKey struct {
	file       source.FileID
	start, end uint32
}

func keyOf(sp source.Span) siteKey {
	return siteKey{file: sp.File, start: sp.Start, end: sp.End}
}

// site records that a name span declares or references def.
type site struct {
	def  DefID
	decl bool
	kind OccurrenceKind
}

// Project returns the project the snapshot was loaded from.
func (s *Snapshot) Project() *project.Project { return s.project }

// Files returns the file set backing the snapshot.
func (s *Snapshot) Files() *source.FileSet { return s.files }

// FileIDs returns every file of the snapshot in path order.
func (s *Snapshot) FileIDs() []source.FileID { return slices.Clone(s.ids) }

// Layout returns the module layout of the project.
func (s *Snapshot) Layout() project.Layout { return s.project.Layout() }

// FileByPath finds a file by its project-relative path.
func (s *Snapshot) FileByPath(rel string) (source.FileID, bool) {
	return s.files.GetLatest(rel)
}

// Syntax returns the parse tree of file.
func (s *Snapshot) Syntax(file source.FileID) (*syntax.Tree, bool) {
	t, ok := s.trees[file]
	return t, ok
}

// SourceRoot returns the source root that contains file.
func (s *Snapshot) SourceRoot(file source.FileID) project.SourceRootID {
	return s.fileRoot[file]
}

// RelativePath returns the slash-separated path of file relative to its source root.
func (s *Snapshot) RelativePath(file source.FileID) string {
	return s.project.InRoot(s.fileRoot[file], s.files.Get(file).Path)
}

// Def returns the definition with the given id.
func (s *Snapshot) Def(id DefID) Def { return s.defs[id] }

// Module returns the module with the given id.
func (s *Snapshot) Module(id ModuleID) *ModuleData { return &s.modules[id] }

// Modules returns the number of modules.
func (s *Snapshot) Modules() int { return len(s.modules) }

// FileModule returns the file-backed module whose items live in file.
func (s *Snapshot) FileModule(file source.FileID) (ModuleID, bool) {
	m, ok := s.fileModule[file]
	return m, ok
}

// DefAt returns the definition named at pos. On a `Foo { x }` shorthand the
// local binding wins over the field.
func (s *Snapshot) DefAt(pos Position) (DefID, bool) {
	tree, ok := s.trees[pos.File]
	if !ok {
		return NoDef, false
	}
	name, ok := tree.LookupName(pos.Offset)
	if !ok {
		return NoDef, false
	}
	sites := s.sites[keyOf(name.Span)]
	if len(sites) == 0 {
		return NoDef, false
	}
	best := sites[0]
	for _, st := range sites[1:] {
		if rankSite(st) < rankSite(best) {
			best = st
		}
	}
	return best.def, true
}

func rankSite(st site) int {
	switch {
	case st.kind == FieldShorthandForField:
		return 2
	case st.decl:
		return 0
	default:
		return 1
	}
}

// ModuleFor returns the module whose declaration name is at pos.
func (s *Snapshot) ModuleFor(pos Position) (ModuleID, bool) {
	tree, ok := s.trees[pos.File]
	if !ok {
		return NoModule, false
	}
	name, ok := tree.LookupName(pos.Offset)
	if !ok || !name.ModItem {
		return NoModule, false
	}
	for _, st := range s.sites[keyOf(name.Span)] {
		if d := s.defs[st.def]; st.decl && d.Kind == DefModule {
			return d.Target, true
		}
	}
	return NoModule, false
}

// DefinitionSource reports where module m is defined.
func (s *Snapshot) DefinitionSource(m ModuleID) ModuleSource {
	md := &s.modules[m]
	return ModuleSource{File: md.File, FileBacked: md.FileBacked}
}

// ModuleDecl returns the definition of the `mod` item declaring m.
func (s *Snapshot) ModuleDecl(m ModuleID) (DefID, bool) {
	d := s.modules[m].Decl
	return d, d != NoDef
}

// FindAllReferences resolves the name at pos and lists every usage of its
// definition. ok is false when pos does not name a resolvable definition.
func (s *Snapshot) FindAllReferences(pos Position) (*ReferenceSearch, bool) {
	def, ok := s.DefAt(pos)
	if !ok {
		return nil, false
	}
	return s.ReferencesOf(def), true
}

// ReferencesOf lists the declaration and usages of def.
func (s *Snapshot) ReferencesOf(def DefID) *ReferenceSearch {
	d := s.defs[def]
	return &ReferenceSearch{
		Def:         def,
		Declaration: Occurrence{Span: d.Span, Kind: d.DeclKind},
		References:  slices.Clone(s.refs[def]),
	}
}

func compareOccurrences(a, b Occurrence) int {
	return cmp.Or(
		cmp.Compare(a.Span.File, b.Span.File),
		cmp.Compare(a.Span.Start, b.Span.Start),
		cmp.Compare(a.Kind, b.Kind),
	)
}
