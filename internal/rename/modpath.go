package rename

import (
	"path"
	"strings"

	"renamer/internal/project"
	"renamer/internal/token"
)

// PlanModuleMove computes where the backing file rel of a module goes when the
// module is renamed to newName. rel is slash-separated and relative to its
// source root. ok is false when rel fits neither layout convention; the
// module is then renamed in text only.
//
//	foo/mod.rs -> bar/mod.rs   (the directory is renamed)
//	a/foo.rs   -> a/bar.rs     (only the stem changes)
func PlanModuleMove(rel, newName string, layout project.Layout) (string, bool) {
	conv, ok := project.ClassifyModulePath(rel, layout)
	if !ok {
		return "", false
	}
	// файлы называются без r#
	stem := strings.TrimPrefix(newName, token.RawPrefix)
	switch conv {
	case project.DirectoryMarker:
		grandparent := path.Dir(path.Dir(rel))
		return path.Join(grandparent, stem, path.Base(rel)), true
	case project.SiblingFile:
		return path.Join(path.Dir(rel), stem+path.Ext(rel)), true
	default:
		return "", false
	}
}
