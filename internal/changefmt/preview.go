package changefmt

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"renamer/internal/changefile"
	"renamer/internal/fix"
	"renamer/internal/source"
)

// hunk is a run of whole lines touched by one or more edits.
type hunk struct {
	firstLine uint32
	edits     []changefile.Edit // offsets in file coordinates
	before    []string
	after     []string
}

// buildHunks groups the edits of one file by the lines they touch and
// renders each group before and after the edits.
func buildHunks(file *source.File, edits []changefile.Edit) ([]hunk, error) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b changefile.Edit) int {
		if a.Start != b.Start {
			return int(a.Start) - int(b.Start)
		}
		return int(a.End) - int(b.End)
	})

	var out []hunk
	var cur *hunk
	var curEnd uint32
	for _, e := range sorted {
		first := lineOf(file, e.Start)
		last := lineOf(file, e.End)
		if cur != nil && first <= curEnd {
			cur.edits = append(cur.edits, e)
			curEnd = max(curEnd, last)
			continue
		}
		if cur != nil {
			if err := cur.render(file, curEnd); err != nil {
				return nil, err
			}
		}
		out = append(out, hunk{firstLine: first, edits: []changefile.Edit{e}})
		cur, curEnd = &out[len(out)-1], last
	}
	if cur != nil {
		if err := cur.render(file, curEnd); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (h *hunk) render(file *source.File, lastLine uint32) error {
	blockStart := lineStartOffset(file, h.firstLine)
	blockEnd := max(lineEndOffsetInclusive(file, lastLine), blockStart)

	original := file.Content[blockStart:blockEnd]
	local := make([]changefile.Edit, len(h.edits))
	for i, e := range h.edits {
		if e.Start < blockStart || e.End > blockEnd {
			return fmt.Errorf("edit %d..%d outside preview block", e.Start, e.End)
		}
		local[i] = changefile.Edit{Start: e.Start - blockStart, End: e.End - blockStart, NewText: e.NewText}
	}
	after, err := fix.Splice(original, local)
	if err != nil {
		return err
	}
	h.before = splitPreviewLines(original)
	h.after = splitPreviewLines(after)
	return nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// завершающий \n не даёт пустой строки в превью
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

// lineOf returns the 1-based line containing off.
func lineOf(f *source.File, off uint32) uint32 {
	line, _ := slices.BinarySearch(f.LineIdx, off)
	n, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return n
}

func contentLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}

func lineEndOffsetInclusive(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}
