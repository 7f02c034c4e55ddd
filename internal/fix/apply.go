// Package fix writes rename plans to disk.
//
// Every file of a plan is checked against the hash recorded when the plan was
// computed, all edits are spliced in memory, and only then is anything
// written. File moves run after the text edits so a moved module keeps the
// edits made inside it. A module backed by a directory marker (foo/mod.rs)
// moves together with its directory, and a sibling file (foo.rs) takes its
// child module directory (foo/) along.
package fix

// todo: откат уже записанных файлов, если запись посередине упала

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"renamer/internal/changefile"
	"renamer/internal/project"
	"renamer/internal/source"
	"renamer/internal/trace"
)

var (
	// ErrStalePlan is returned when a file changed after the plan was computed.
	ErrStalePlan = errors.New("file changed since the plan was computed")
	// ErrDestinationExists is returned when a move would overwrite a file.
	ErrDestinationExists = errors.New("move destination already exists")
)

// Options configures Apply.
type Options struct {
	// Force skips the uncommitted-changes guard.
	Force bool
	// DryRun computes the result without touching the disk.
	DryRun bool
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// Result lists what Apply changed (or would change on a dry run). Moves are
// the renames performed on disk; a directory move lists the directories.
type Result struct {
	Files []FileChange
	Moves []changefile.Move
}

// moveOp is one os.Rename of a file or a whole directory.
type moveOp struct {
	from, to string
	hash     string
}

type staged struct {
	abs  string
	rel  string
	mode os.FileMode
	data []byte
	n    int
}

// Apply writes plan into proj.
func Apply(ctx context.Context, proj *project.Project, plan *changefile.Plan, opts Options) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	span, _ := trace.Start(ctx, trace.ScopePass, "fix/stage")
	writes, err := stage(ctx, proj, plan)
	span.End(fmt.Sprintf("%d files", len(writes)))
	if err != nil {
		return nil, err
	}
	ops, err := planMoves(proj, plan.Moves)
	if err != nil {
		return nil, err
	}
	if !opts.Force {
		if err := guardWorktree(proj, touched(plan)); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for _, op := range ops {
		res.Moves = append(res.Moves, changefile.Move{From: op.from, To: op.to, Hash: op.hash})
	}
	for _, w := range writes {
		res.Files = append(res.Files, FileChange{Path: w.rel, EditCount: w.n})
	}
	sort.SliceStable(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})
	if opts.DryRun {
		return res, nil
	}

	span, _ = trace.Start(ctx, trace.ScopePass, "fix/write")
	defer span.End("")
	for _, w := range writes {
		if err := os.WriteFile(w.abs, w.data, w.mode); err != nil {
			return res, fmt.Errorf("write %s: %w", w.rel, err)
		}
	}
	for _, op := range ops {
		dst := proj.Abs(op.to)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return res, fmt.Errorf("move %s: %w", op.from, err)
		}
		if err := os.Rename(proj.Abs(op.from), dst); err != nil {
			return res, fmt.Errorf("move %s: %w", op.from, err)
		}
	}
	return res, nil
}

// stage reads, verifies and edits every file of the plan in memory.
func stage(ctx context.Context, proj *project.Project, plan *changefile.Plan) ([]staged, error) {
	out := make([]staged, 0, len(plan.Files))
	for _, fe := range plan.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs := proj.Abs(fe.Path)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fe.Path, err)
		}
		raw, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fe.Path, err)
		}
		content, flags := source.Normalize(raw)
		if changefile.HashOf(sha256.Sum256(content)) != fe.Hash {
			return nil, fmt.Errorf("%w: %s", ErrStalePlan, fe.Path)
		}
		edited, err := Splice(content, fe.Edits)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fe.Path, err)
		}
		out = append(out, staged{
			abs:  abs,
			rel:  fe.Path,
			mode: info.Mode().Perm(),
			data: restore(edited, flags),
			n:    len(fe.Edits),
		})
	}
	return out, nil
}

// restore undoes source.Normalize: CRLF line endings and the BOM come back.
func restore(content []byte, flags source.FileFlags) []byte {
	if flags&source.FileNormalizedCRLF != 0 {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	if flags&source.FileHadBOM != 0 {
		content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
	}
	return content
}

// planMoves verifies the sources of moves and turns them into renames. A
// directory-marker file is moved by renaming its directory. A sibling file
// is renamed and its child module directory, when present, follows it.
// Destinations must not exist.
func planMoves(proj *project.Project, moves []changefile.Move) ([]moveOp, error) {
	layout := proj.Layout()
	var ops []moveOp
	for _, mv := range moves {
		raw, err := os.ReadFile(proj.Abs(mv.From))
		if err != nil {
			return nil, fmt.Errorf("move %s: %w", mv.From, err)
		}
		if mv.Hash != "" {
			content, _ := source.Normalize(raw)
			if changefile.HashOf(sha256.Sum256(content)) != mv.Hash {
				return nil, fmt.Errorf("%w: %s", ErrStalePlan, mv.From)
			}
		}
		if mv.From == mv.To {
			continue
		}

		conv, ok := project.ClassifyModulePath(mv.From, layout)
		fromDir, toDir := path.Dir(mv.From), path.Dir(mv.To)
		switch {
		case ok && conv == project.DirectoryMarker && path.Base(mv.From) == path.Base(mv.To) &&
			fromDir != "." && toDir != "." && fromDir != toDir:
			ops = append(ops, moveOp{from: fromDir, to: toDir, hash: mv.Hash})
		default:
			ops = append(ops, moveOp{from: mv.From, to: mv.To, hash: mv.Hash})
			if !ok || conv != project.SiblingFile || !layout.IsSource(mv.From) || !layout.IsSource(mv.To) {
				break
			}
			// дочерние модули foo.rs лежат в foo/
			childFrom, childTo := layout.ChildModuleDir(mv.From), layout.ChildModuleDir(mv.To)
			if childFrom == childTo {
				break
			}
			info, err := os.Stat(proj.Abs(childFrom))
			if err == nil && info.IsDir() {
				ops = append(ops, moveOp{from: childFrom, to: childTo})
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("move %s: %w", mv.From, err)
			}
		}
	}
	for _, op := range ops {
		if _, err := os.Lstat(proj.Abs(op.to)); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, op.to)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("move %s: %w", op.from, err)
		}
	}
	return ops, nil
}

func touched(plan *changefile.Plan) []string {
	out := make([]string, 0, len(plan.Files)+len(plan.Moves))
	for _, f := range plan.Files {
		out = append(out, f.Path)
	}
	for _, mv := range plan.Moves {
		out = append(out, mv.From)
	}
	return out
}
