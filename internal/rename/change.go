package rename

import (
	"renamer/internal/analysis"
	"renamer/internal/project"
	"renamer/internal/source"
)

// Label is the label of every rename change.
const Label = "Rename"

// TextEdit replaces Span with NewText. Spans are in pre-edit coordinates; an
// empty span is an insertion.
type TextEdit struct {
	Span    source.Span
	NewText string
}

// FileSystemEdit is a change to the file tree. MoveFile is the only variant.
type FileSystemEdit interface {
	fileSystemEdit()
}

// MoveFile moves the file Src to DstPath inside source root DstRoot.
type MoveFile struct {
	Src     source.FileID
	DstRoot project.SourceRootID
	DstPath string // slash-separated, relative to DstRoot
}

func (MoveFile) fileSystemEdit() {}

// Change is one atomic multi-file edit.
type Change struct {
	Label           string
	TextEdits       []TextEdit
	FileSystemEdits []FileSystemEdit
	CursorAfter     *analysis.Position
}

// Result is a change together with the range of the name it was computed for.
type Result struct {
	Range  source.Span
	Change *Change
}

// newChange aggregates edits. It returns nil when there is nothing to do so
// callers never see an empty Change.
func newChange(edits []TextEdit, moves []FileSystemEdit) *Change {
	if len(edits) == 0 && len(moves) == 0 {
		return nil
	}
	return &Change{Label: Label, TextEdits: edits, FileSystemEdits: moves}
}

// EditsByFile groups the text edits by file, keeping their order.
func (c *Change) EditsByFile() map[source.FileID][]TextEdit {
	out := make(map[source.FileID][]TextEdit)
	for _, e := range c.TextEdits {
		out[e.Span.File] = append(out[e.Span.File], e)
	}
	return out
}

// Moves returns the file moves of the change.
func (c *Change) Moves() []MoveFile {
	var out []MoveFile
	for _, e := range c.FileSystemEdits {
		if mv, ok := e.(MoveFile); ok {
			out = append(out, mv)
		}
	}
	return out
}
