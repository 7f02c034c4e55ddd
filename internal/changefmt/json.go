package changefmt

import (
	"encoding/json"
	"io"

	"renamer/internal/changefile"
	"renamer/internal/source"
)

// LocationJSON is a byte range, optionally with line/col.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// EditJSON is one text edit.
type EditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FileJSON groups the edits of one file.
type FileJSON struct {
	Path  string     `json:"path"`
	Edits []EditJSON `json:"edits"`
}

// MoveJSON is a file move.
type MoveJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ChangeOutput is the root of the JSON output.
type ChangeOutput struct {
	Label     string       `json:"label"`
	Range     LocationJSON `json:"range"`
	Files     []FileJSON   `json:"files"`
	Moves     []MoveJSON   `json:"moves,omitempty"`
	EditCount int          `json:"edit_count"`
}

func makeLocation(path string, start, end uint32, file *source.File, includePositions bool) LocationJSON {
	loc := LocationJSON{File: path, StartByte: start, EndByte: end}
	if includePositions && file != nil && end <= contentLen(file) {
		loc.StartLine, loc.StartCol = lineCol(file, start)
		loc.EndLine, loc.EndCol = lineCol(file, end)
	}
	return loc
}

func lineCol(f *source.File, off uint32) (line, col uint32) {
	line = lineOf(f, off)
	return line, off - lineStartOffset(f, line) + 1
}

// BuildOutput builds the JSON document without encoding it. files may be nil;
// positions, old texts and previews then stay empty.
func BuildOutput(plan *changefile.Plan, files *source.FileSet, opts JSONOpts) ChangeOutput {
	rangeFile, _ := lookup(files, plan.Range.Path)
	out := ChangeOutput{
		Label:     plan.Label,
		Range:     makeLocation(plan.Range.Path, plan.Range.Start, plan.Range.End, rangeFile, opts.IncludePositions),
		Files:     make([]FileJSON, 0, len(plan.Files)),
		EditCount: plan.EditCount(),
	}
	for _, fe := range plan.Files {
		file, ok := lookup(files, fe.Path)
		fj := FileJSON{Path: fe.Path, Edits: make([]EditJSON, 0, len(fe.Edits))}
		for _, e := range fe.Edits {
			ej := EditJSON{
				Location: makeLocation(fe.Path, e.Start, e.End, file, opts.IncludePositions),
				NewText:  e.NewText,
			}
			if ok {
				ej.OldText = file.Text(source.Span{Start: e.Start, End: e.End})
				if opts.IncludePreviews {
					if hunks, err := buildHunks(file, []changefile.Edit{e}); err == nil && len(hunks) == 1 {
						ej.BeforeLines = hunks[0].before
						ej.AfterLines = hunks[0].after
					}
				}
			}
			fj.Edits = append(fj.Edits, ej)
		}
		out.Files = append(out.Files, fj)
	}
	for _, mv := range plan.Moves {
		out.Moves = append(out.Moves, MoveJSON{From: mv.From, To: mv.To})
	}
	return out
}

// JSON writes BuildOutput as indented JSON.
func JSON(w io.Writer, plan *changefile.Plan, files *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(plan, files, opts))
}
