package fix

import (
	"errors"
	"fmt"
	"sort"

	"renamer/internal/changefile"
)

var (
	// ErrConflict is returned when two edits of one file overlap.
	ErrConflict = errors.New("overlapping edits")
	// ErrOutOfRange is returned for an edit past the end of its file.
	ErrOutOfRange = errors.New("edit span out of range")
)

type indexedEdit struct {
	changefile.Edit
	order int
}

// Splice applies edits to content in one pass and returns the new bytes.
// Offsets are in the coordinates of content. An insertion at the start of a
// replaced range lands before the replacement; insertions at the same offset
// keep their relative order.
func Splice(content []byte, edits []changefile.Edit) ([]byte, error) {
	sorted := make([]indexedEdit, len(edits))
	for i, e := range edits {
		if e.End < e.Start || int(e.End) > len(content) {
			return nil, fmt.Errorf("%w: %d..%d in %d bytes", ErrOutOfRange, e.Start, e.End, len(content))
		}
		sorted[i] = indexedEdit{Edit: e, order: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.order < b.order
	})
	for i := 1; i < len(sorted); i++ {
		for j := i - 1; j >= 0 && sorted[j].End > sorted[i].Start; j-- {
			if spansConflict(sorted[j].Edit, sorted[i].Edit) {
				return nil, fmt.Errorf("%w: %d..%d and %d..%d", ErrConflict,
					sorted[j].Start, sorted[j].End, sorted[i].Start, sorted[i].End)
			}
		}
	}

	// с конца, чтобы смещения оставались валидными
	out := append([]byte(nil), content...)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		suffix := append([]byte(nil), out[e.End:]...)
		out = append(append(out[:e.Start], e.NewText...), suffix...)
	}
	return out, nil
}

// spansConflict reports whether two edits overlap. Spans are half-open.
// Zero-length edits never conflict with each other, and an insertion only
// conflicts with a range that strictly contains its offset.
func spansConflict(a, b changefile.Edit) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start < a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}
