package changefmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"renamer/internal/changefile"
	"renamer/internal/source"
)

const tabWidth = 4

type palette struct {
	header, path, removed, added, caret, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		path:    color.New(color.FgCyan, color.Bold),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
		caret:   color.New(color.FgYellow, color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.header, p.path, p.removed, p.added, p.caret, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty prints a summary of plan followed by a -/+ preview of every
// touched line. files supplies the pre-edit contents by project-relative
// path; edits of a file it lacks are listed without a preview.
func Pretty(w io.Writer, plan *changefile.Plan, files *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	if _, err := pal.header.Fprintln(w, Summary(plan)); err != nil {
		return err
	}
	for _, fe := range plan.Files {
		pal.path.Fprintln(w, fe.Path)
		if opts.NoPreview {
			continue
		}
		file, ok := lookup(files, fe.Path)
		if !ok {
			for _, e := range fe.Edits {
				fmt.Fprintf(w, "  @%d..%d %q\n", e.Start, e.End, e.NewText)
			}
			continue
		}
		hunks, err := buildHunks(file, fe.Edits)
		if err != nil {
			return fmt.Errorf("%s: %w", fe.Path, err)
		}
		printed := 0
		for _, h := range hunks {
			if opts.MaxLines > 0 && printed >= opts.MaxLines {
				pal.dim.Fprintf(w, "  ... %d more changes\n", len(hunks)-printed)
				break
			}
			printHunk(w, pal, file, h)
			printed++
		}
	}
	for _, mv := range plan.Moves {
		fmt.Fprintf(w, "%s %s -> %s\n", pal.header.Sprint("move"), mv.From, mv.To)
	}
	return nil
}

// Summary returns "Rename: N edits in M files, K moves".
func Summary(plan *changefile.Plan) string {
	var sb strings.Builder
	sb.WriteString(plan.Label)
	sb.WriteString(": ")
	sb.WriteString(plural(plan.EditCount(), "edit"))
	sb.WriteString(" in ")
	sb.WriteString(plural(len(plan.Files), "file"))
	if len(plan.Moves) > 0 {
		sb.WriteString(", ")
		sb.WriteString(plural(len(plan.Moves), "move"))
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func printHunk(w io.Writer, pal palette, file *source.File, h hunk) {
	gutter := len(fmt.Sprint(h.firstLine + uint32(max(len(h.before), len(h.after)))))
	for i, line := range h.before {
		fmt.Fprintf(w, "  %*d %s\n", gutter, h.firstLine+uint32(i), pal.removed.Sprint("- "+expandTabs(line)))
	}
	if len(h.before) == 1 {
		if carets := caretLine(file, h); carets != "" {
			fmt.Fprintf(w, "  %*s %s\n", gutter, "", pal.caret.Sprint("  "+carets))
		}
	}
	for i, line := range h.after {
		fmt.Fprintf(w, "  %*d %s\n", gutter, h.firstLine+uint32(i), pal.added.Sprint("+ "+expandTabs(line)))
	}
}

// caretLine underlines the edited ranges of a single-line hunk. Widths are
// display columns, so wide characters before a name keep the carets aligned.
func caretLine(file *source.File, h hunk) string {
	lineStart := lineStartOffset(file, h.firstLine)
	line := h.before[0]
	var sb strings.Builder
	col := 0
	for _, e := range h.edits {
		relStart := int(e.Start - lineStart)
		relEnd := int(e.End - lineStart)
		if relStart < 0 || relEnd > len(line) || relEnd < relStart {
			return ""
		}
		startCol := runewidth.StringWidth(expandTabs(line[:relStart]))
		if startCol < col {
			continue
		}
		sb.WriteString(strings.Repeat(" ", startCol-col))
		width := max(runewidth.StringWidth(expandTabs(line[relStart:relEnd])), 1)
		sb.WriteString(strings.Repeat("^", width))
		col = startCol + width
	}
	return sb.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func lookup(files *source.FileSet, path string) (*source.File, bool) {
	if files == nil {
		return nil, false
	}
	return files.GetByPath(path)
}
