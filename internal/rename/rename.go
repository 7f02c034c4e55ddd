// Package rename computes the edits that rename a symbol or a module across a
// project.
//
// A request is validated first, then classified: a cursor on the name of a
// `mod` item renames the module, moving its backing file when it has one;
// anything else is renamed through its references. Nothing is written; the
// caller decides what to do with the returned Change.
package rename

import (
	"fmt"

	"renamer/internal/analysis"
	"renamer/internal/project"
	"renamer/internal/source"
	"renamer/internal/syntax"
)

// Position locates the cursor of a request.
type Position = analysis.Position

// Database is the read-only project view a rename runs against.
// *analysis.Snapshot implements it.
type Database interface {
	Syntax(file source.FileID) (*syntax.Tree, bool)
	FindAllReferences(pos Position) (*analysis.ReferenceSearch, bool)
	ModuleFor(pos Position) (analysis.ModuleID, bool)
	DefinitionSource(m analysis.ModuleID) analysis.ModuleSource
	RelativePath(file source.FileID) string
	SourceRoot(file source.FileID) project.SourceRootID
	Layout() project.Layout
}

var _ Database = (*analysis.Snapshot)(nil)

// Rename renames whatever is named at pos to newName.
//
// A nil Result always comes with a non-nil error: ErrInvalidName when newName
// is rejected (nothing is resolved then), ErrNotRenamable when pos names
// nothing, ErrNoOccurrences when resolution found nothing to edit.
func Rename(db Database, pos Position, newName string) (*Result, error) {
	name, err := ValidateName(newName)
	if err != nil {
		return nil, err
	}
	tree, ok := db.Syntax(pos.File)
	if !ok {
		return nil, fmt.Errorf("%w: unknown file %d", ErrNotRenamable, pos.File)
	}
	if target, ok := locateModule(tree, pos); ok {
		return renameModule(db, target, pos, name)
	}
	return renameReference(db, tree, pos, name)
}

// Prepare reports the range of the renamable name at pos without computing edits.
func Prepare(db Database, pos Position) (source.Span, error) {
	tree, ok := db.Syntax(pos.File)
	if !ok {
		return source.Span{}, fmt.Errorf("%w: unknown file %d", ErrNotRenamable, pos.File)
	}
	if target, ok := locateModule(tree, pos); ok {
		return target.span, nil
	}
	name, ok := tree.LookupName(pos.Offset)
	if !ok {
		return source.Span{}, ErrNotRenamable
	}
	if _, ok := db.FindAllReferences(pos); !ok {
		return source.Span{}, ErrNotRenamable
	}
	return name.Span, nil
}

func renameModule(db Database, target moduleTarget, pos Position, newName string) (*Result, error) {
	var moves []FileSystemEdit
	if m, ok := db.ModuleFor(pos); ok {
		if src := db.DefinitionSource(m); src.FileBacked {
			rel := db.RelativePath(src.File)
			if dst, ok := PlanModuleMove(rel, newName, db.Layout()); ok {
				moves = append(moves, MoveFile{
					Src:     src.File,
					DstRoot: db.SourceRoot(pos.File),
					DstPath: dst,
				})
			}
		}
	}

	edits := []TextEdit{{Span: target.span, NewText: newName}}
	if refs, ok := db.FindAllReferences(pos); ok {
		edits = append(edits, EditsForOccurrences(refs.References, newName)...)
	}
	return &Result{Range: target.span, Change: newChange(edits, moves)}, nil
}

func renameReference(db Database, tree *syntax.Tree, pos Position, newName string) (*Result, error) {
	refs, ok := db.FindAllReferences(pos)
	if !ok {
		return nil, ErrNotRenamable
	}
	occs := make([]analysis.Occurrence, 0, len(refs.References)+1)
	// пустой span значит, что объявления нет
	if !refs.Declaration.Span.Empty() {
		occs = append(occs, refs.Declaration)
	}
	occs = append(occs, refs.References...)

	change := newChange(EditsForOccurrences(occs, newName), nil)
	if change == nil {
		return nil, ErrNoOccurrences
	}
	rng := refs.Declaration.Span
	if name, ok := tree.LookupName(pos.Offset); ok {
		rng = name.Span
	}
	return &Result{Range: rng, Change: change}, nil
}
