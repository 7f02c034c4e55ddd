package fix

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"

	"renamer/internal/project"
)

// ErrDirtyWorktree is returned when a file about to be changed has
// uncommitted changes.
var ErrDirtyWorktree = errors.New("uncommitted changes")

// guardWorktree refuses to touch files that git could not restore. Projects
// outside a git repository are not guarded.
func guardWorktree(proj *project.Project, rels []string) error {
	repo, err := git.PlainOpenWithOptions(proj.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil
		}
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	root := wt.Filesystem.Root()

	var dirty []string
	for _, rel := range rels {
		inRepo, err := filepath.Rel(root, proj.Abs(rel))
		if err != nil {
			continue
		}
		// Status содержит только изменённые и неотслеживаемые файлы
		st, ok := status[filepath.ToSlash(inRepo)]
		if !ok {
			continue
		}
		if st.Staging != git.Unmodified || st.Worktree != git.Unmodified {
			dirty = append(dirty, rel)
		}
	}
	if len(dirty) == 0 {
		return nil
	}
	slices.Sort(dirty)
	return fmt.Errorf("%w in %s (use --force to apply anyway)", ErrDirtyWorktree, strings.Join(slices.Compact(dirty), ", "))
}
