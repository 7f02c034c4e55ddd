package analysis

import (
	"renamer/internal/source"

	sitter "github.com/smacker/go-tree-sitter"
)

// DefID identifies a definition inside one Snapshot.
type DefID uint32

// ModuleID identifies a module inside one Snapshot.
type ModuleID uint32

const (
	NoDef    DefID    = ^DefID(0)
	NoModule ModuleID = ^ModuleID(0)
)

// DefKind classifies definitions.
type DefKind uint8

const (
	DefModule DefKind = iota
	DefFunction
	DefMethod
	DefStruct
	DefUnion
	DefEnum
	DefVariant
	DefTrait
	DefTypeAlias
	DefConst
	DefStatic
	DefMacro
	DefField
	DefLocal
)

var defKindNames = [...]string{
	DefModule:    "module",
	DefFunction:  "function",
	DefMethod:    "method",
	DefStruct:    "struct",
	DefUnion:     "union",
	DefEnum:      "enum",
	DefVariant:   "variant",
	DefTrait:     "trait",
	DefTypeAlias: "type alias",
	DefConst:     "const",
	DefStatic:    "static",
	DefMacro:     "macro",
	DefField:     "field",
	DefLocal:     "local",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return "unknown"
}

// IsType reports whether the definition lives in the type namespace.
func (k DefKind) IsType() bool {
	switch k {
	case DefModule, DefStruct, DefUnion, DefEnum, DefTrait, DefTypeAlias:
		return true
	}
	return false
}

// Def is one named entity of the project.
type Def struct {
	ID     DefID
	Kind   DefKind
	Name   string
	Span   source.Span // name range at the declaration
	Module ModuleID    // module the declaration belongs to
	Owner  DefID       // struct, enum, variant, trait or impl type for members
	Target ModuleID    // DefModule only: the declared module
	// DeclKind is how the declaration itself must be edited. It is
	// FieldShorthandForLocal for bindings written as `Foo { x }` patterns.
	DeclKind OccurrenceKind
}

// ModuleData describes one module of a crate tree.
type ModuleData struct {
	ID     ModuleID
	Name   string // "" for a crate root
	Parent ModuleID
	Root   ModuleID // crate root of the tree
	Decl   DefID    // the `mod` declaration, NoDef for crate roots
	File   source.FileID
	// Items is the node holding the module's items: the source_file of a
	// file-backed module or the declaration_list of an inline one. It is nil
	// when the backing file of `mod name;` was not found.
	Items      *sitter.Node
	FileBacked bool
	Dir        string // project-relative directory of child module files
	Children   map[string]ModuleID
	scope      map[source.StringID][]DefID
	globs      []ModuleID
}

// ModuleSource tells where a module is defined.
type ModuleSource struct {
	File       source.FileID
	FileBacked bool // false for inline modules and unresolved `mod name;`
}

// OccurrenceKind says how a usage site must be rewritten when its definition is renamed.
type OccurrenceKind uint8

const (
	// Normal occurrences are replaced by the new name.
	Normal OccurrenceKind = iota
	// FieldShorthandForField marks `Foo { x }` seen from the field x.
	FieldShorthandForField
	// FieldShorthandForLocal marks `Foo { x }` seen from the local x.
	FieldShorthandForLocal
)

func (k OccurrenceKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case FieldShorthandForField:
		return "shorthand-for-field"
	case FieldShorthandForLocal:
		return "shorthand-for-local"
	default:
		return "unknown"
	}
}

// Occurrence is one site of a definition's name.
type Occurrence struct {
	Span source.Span
	Kind OccurrenceKind
}

// ReferenceSearch is the result of FindAllReferences.
type ReferenceSearch struct {
	Def         DefID
	Declaration Occurrence
	References  []Occurrence // declaration excluded, sorted by file and offset
}
