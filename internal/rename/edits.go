package rename

import (
	"fmt"

	"renamer/internal/analysis"
	"renamer/internal/source"
)

// EditForOccurrence turns one occurrence into one text edit.
//
// A shorthand `Foo { x }` is expanded instead of replaced: renaming the field
// inserts "new: " before x, renaming the local appends ": new" after it.
func EditForOccurrence(occ analysis.Occurrence, newName string) TextEdit {
	sp := occ.Span
	switch occ.Kind {
	case analysis.Normal:
		return TextEdit{Span: sp, NewText: newName}
	case analysis.FieldShorthandForField:
		return TextEdit{
			Span:    source.Span{File: sp.File, Start: sp.Start, End: sp.Start},
			NewText: newName + ": ",
		}
	case analysis.FieldShorthandForLocal:
		return TextEdit{
			Span:    source.Span{File: sp.File, Start: sp.End, End: sp.End},
			NewText: ": " + newName,
		}
	default:
		panic(fmt.Sprintf("rename: unexpected occurrence kind %d", occ.Kind))
	}
}

// EditsForOccurrences maps occurrences one to one, in order.
func EditsForOccurrences(occs []analysis.Occurrence, newName string) []TextEdit {
	edits := make([]TextEdit, 0, len(occs))
	for _, occ := range occs {
		edits = append(edits, EditForOccurrence(occ, newName))
	}
	return edits
}
