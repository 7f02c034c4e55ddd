package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file searched for when locating a project.
const ManifestName = "renamer.toml"

// Manifest is the decoded renamer.toml.
type Manifest struct {
	Name    string
	Layout  Layout
	Roots   []RootSpec
	Exclude []string
}

// RootSpec declares one source root relative to the manifest directory.
type RootSpec struct {
	Path string `toml:"path"`
}

var (
	// ErrRootEscapes indicates a [[roots]] entry pointing outside the project.
	ErrRootEscapes = errors.New("root escapes project directory")
	// ErrBadLayout indicates an unusable [layout] section.
	ErrBadLayout = errors.New("invalid [layout]")
)

type manifestFile struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Layout struct {
		Marker    string   `toml:"marker"`
		Extension string   `toml:"extension"`
		RootFiles []string `toml:"root_files"`
	} `toml:"layout"`
	Roots   []RootSpec `toml:"roots"`
	Exclude []string   `toml:"exclude"`
}

// DefaultManifest describes a project with one root at its directory.
func DefaultManifest() Manifest {
	return Manifest{
		Layout:  DefaultLayout(),
		Roots:   []RootSpec{{Path: "."}},
		Exclude: []string{".git", "target"},
	}
}

// FindManifest walks up from startDir to locate renamer.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest decodes path; sections that are not defined keep their defaults.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	m := DefaultManifest()
	m.Name = strings.TrimSpace(cfg.Project.Name)
	if meta.IsDefined("layout", "marker") {
		m.Layout.Marker = strings.TrimSpace(cfg.Layout.Marker)
	}
	if meta.IsDefined("layout", "extension") {
		m.Layout.Extension = strings.TrimPrefix(strings.TrimSpace(cfg.Layout.Extension), ".")
	}
	if meta.IsDefined("layout", "root_files") {
		m.Layout.RootFiles = cfg.Layout.RootFiles
	}
	if m.Layout.Marker == "" || m.Layout.Extension == "" || strings.ContainsAny(m.Layout.Marker, "/.") {
		return Manifest{}, fmt.Errorf("%s: %w: marker and extension must be plain names", path, ErrBadLayout)
	}
	if meta.IsDefined("roots") {
		m.Roots = cfg.Roots
	}
	if meta.IsDefined("exclude") {
		m.Exclude = cfg.Exclude
	}
	dir := filepath.Dir(path)
	for _, r := range m.Roots {
		if !pathWithin(dir, filepath.Join(dir, filepath.FromSlash(r.Path))) || filepath.IsAbs(r.Path) {
			return Manifest{}, fmt.Errorf("%s: root %q: %w", path, r.Path, ErrRootEscapes)
		}
	}
	return m, nil
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
