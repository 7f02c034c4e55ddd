package project

import (
	"path"
	"slices"
	"strings"
)

// Layout describes how modules map onto files.
type Layout struct {
	Marker    string   // stem of a directory module file, "mod"
	Extension string   // source extension without the dot, "rs"
	RootFiles []string // crate root file names, "lib.rs" and "main.rs"
}

// DefaultLayout is used when no manifest overrides it.
func DefaultLayout() Layout {
	return Layout{
		Marker:    "mod",
		Extension: "rs",
		RootFiles: []string{"lib.rs", "main.rs"},
	}
}

// Convention says how a module's backing file is named.
type Convention uint8

const (
	// SiblingFile is a file named after the module: a/foo.rs.
	SiblingFile Convention = iota
	// DirectoryMarker is a marker file inside a directory named after the module: a/foo/mod.rs.
	DirectoryMarker
)

func (c Convention) String() string {
	switch c {
	case SiblingFile:
		return "sibling-file"
	case DirectoryMarker:
		return "directory-marker"
	default:
		return "unknown"
	}
}

// ClassifyModulePath picks the convention of a project-relative, slash-separated
// path by its stem alone. ok is false when the path has no usable stem.
func ClassifyModulePath(rel string, layout Layout) (conv Convention, ok bool) {
	stem := Stem(rel)
	if stem == "" {
		return SiblingFile, false
	}
	if stem == layout.Marker {
		return DirectoryMarker, true
	}
	return SiblingFile, true
}

// Stem returns the file name of rel without its last extension.
func Stem(rel string) string {
	base := path.Base(rel)
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Ext returns the extension of rel without the dot, or "".
func Ext(rel string) string {
	return strings.TrimPrefix(path.Ext(rel), ".")
}

// IsRootFile reports whether rel names a crate root file.
func (l Layout) IsRootFile(rel string) bool {
	return slices.Contains(l.RootFiles, path.Base(rel))
}

// IsSource reports whether rel carries the source extension.
func (l Layout) IsSource(rel string) bool {
	return Ext(rel) == l.Extension
}

// OwnsDirectory reports whether child modules declared in rel live next to it
// rather than in a directory named after its stem.
func (l Layout) OwnsDirectory(rel string) bool {
	return l.IsRootFile(rel) || Stem(rel) == l.Marker
}

// ChildModuleDir returns the directory holding files of modules declared in rel.
func (l Layout) ChildModuleDir(rel string) string {
	dir := path.Dir(rel)
	if l.OwnsDirectory(rel) {
		return dir
	}
	return path.Join(dir, Stem(rel))
}

// ModuleFileCandidates lists the files that may back module name declared in a
// directory dir, in lookup order.
func (l Layout) ModuleFileCandidates(dir, name string) []string {
	return []string{
		path.Join(dir, name+"."+l.Extension),
		path.Join(dir, name, l.Marker+"."+l.Extension),
	}
}
