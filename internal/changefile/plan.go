// Package changefile stores rename changes as plan files that can be reviewed
// and applied later. Plans address files by project-relative path and carry
// the content hash each edit was computed against.
package changefile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"renamer/internal/analysis"
	"renamer/internal/rename"
	"renamer/internal/source"
	"renamer/internal/version"
)

// SchemaVersion is bumped whenever Plan changes shape.
const SchemaVersion uint16 = 1

var (
	// ErrSchema is returned for plans written by an incompatible version.
	ErrSchema = errors.New("unsupported plan schema")
	// ErrUnsafePath is returned for a plan path that is absolute or climbs out
	// of the project with "..".
	ErrUnsafePath = errors.New("path leaves the project")
)

// Plan is a serialisable rename change.
type Plan struct {
	Schema uint16      `msgpack:"schema" json:"schema"`
	Tool   string      `msgpack:"tool" json:"tool"`
	Root   string      `msgpack:"root" json:"root"` // project directory the plan was computed in
	Label  string      `msgpack:"label" json:"label"`
	Range  Location    `msgpack:"range" json:"range"`
	Files  []FileEdits `msgpack:"files" json:"files"`
	Moves  []Move      `msgpack:"moves,omitempty" json:"moves,omitempty"`
}

// Location is a byte range in a project-relative file.
type Location struct {
	Path  string `msgpack:"path" json:"path"`
	Start uint32 `msgpack:"start" json:"start"`
	End   uint32 `msgpack:"end" json:"end"`
}

// FileEdits groups the edits of one file.
type FileEdits struct {
	Path  string `msgpack:"path" json:"path"`
	Hash  string `msgpack:"hash" json:"hash"` // hex sha256 of the normalized content
	Edits []Edit `msgpack:"edits" json:"edits"`
}

// Edit replaces [Start, End) with NewText.
type Edit struct {
	Start   uint32 `msgpack:"start" json:"start"`
	End     uint32 `msgpack:"end" json:"end"`
	NewText string `msgpack:"new_text" json:"new_text"`
}

// Move renames a file. Both paths are project-relative.
type Move struct {
	From string `msgpack:"from" json:"from"`
	To   string `msgpack:"to" json:"to"`
	Hash string `msgpack:"hash" json:"hash"`
}

// HashOf formats a content digest the way plans store it.
func HashOf(sum [32]byte) string {
	return hex.EncodeToString(sum[:])
}

// FromResult converts a rename result computed on snap into a plan. Files are
// ordered by path, edits keep the order of the change.
func FromResult(snap *analysis.Snapshot, res *rename.Result) (*Plan, error) {
	if res == nil || res.Change == nil {
		return nil, fmt.Errorf("changefile: empty rename result")
	}
	files := snap.Files()
	rangeFile := files.Get(res.Range.File)
	plan := &Plan{
		Schema: SchemaVersion,
		Tool:   version.VersionString(),
		Root:   snap.Project().Dir,
		Label:  res.Change.Label,
		Range:  Location{Path: rangeFile.Path, Start: res.Range.Start, End: res.Range.End},
	}

	byFile := res.Change.EditsByFile()
	ids := make([]source.FileID, 0, len(byFile))
	for id := range byFile {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b source.FileID) int {
		pa, pb := files.Get(a).Path, files.Get(b).Path
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})
	for _, id := range ids {
		f := files.Get(id)
		fe := FileEdits{Path: f.Path, Hash: HashOf(f.Hash)}
		for _, e := range byFile[id] {
			fe.Edits = append(fe.Edits, Edit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText})
		}
		plan.Files = append(plan.Files, fe)
	}

	proj := snap.Project()
	for _, mv := range res.Change.Moves() {
		f := files.Get(mv.Src)
		plan.Moves = append(plan.Moves, Move{
			From: f.Path,
			To:   proj.JoinRoot(mv.DstRoot, mv.DstPath),
			Hash: HashOf(f.Hash),
		})
	}
	return plan, nil
}

// Validate checks invariants a decoded plan must satisfy before it is applied.
func (p *Plan) Validate() error {
	if p.Schema != SchemaVersion {
		return fmt.Errorf("%w: %d (want %d)", ErrSchema, p.Schema, SchemaVersion)
	}
	seen := make(map[string]bool, len(p.Files))
	for _, f := range p.Files {
		if f.Path == "" {
			return fmt.Errorf("plan: file without path")
		}
		if err := checkPath(f.Path); err != nil {
			return err
		}
		if seen[f.Path] {
			return fmt.Errorf("plan: %s listed twice", f.Path)
		}
		seen[f.Path] = true
		for _, e := range f.Edits {
			if e.End < e.Start {
				return fmt.Errorf("plan: %s: inverted edit %d..%d", f.Path, e.Start, e.End)
			}
		}
	}
	for _, m := range p.Moves {
		if m.From == "" || m.To == "" {
			return fmt.Errorf("plan: incomplete move %q -> %q", m.From, m.To)
		}
		if err := checkPath(m.From); err != nil {
			return err
		}
		if err := checkPath(m.To); err != nil {
			return err
		}
	}
	return nil
}

// checkPath accepts slash-separated paths that stay below the project directory.
func checkPath(p string) error {
	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) || !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("plan: %w: %q", ErrUnsafePath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return fmt.Errorf("plan: %w: %q", ErrUnsafePath, p)
		}
	}
	return nil
}

// EditCount returns the number of text edits in the plan.
func (p *Plan) EditCount() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Edits)
	}
	return n
}
