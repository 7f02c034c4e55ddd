package project

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// SourceRootID identifies a source root of a Project.
type SourceRootID uint32

// SourceRoot is a directory whose files are addressed relative to it.
type SourceRoot struct {
	ID  SourceRootID
	Rel string // slash-separated, relative to Project.Dir; "." for the project directory
}

// Project is an opened project directory with its manifest.
type Project struct {
	Dir          string // absolute
	Manifest     Manifest
	ManifestPath string // empty when defaults are used
	Roots        []SourceRoot
}

// Open locates renamer.toml from startDir upwards. Without one, startDir
// itself becomes a project with the default manifest.
func Open(startDir string) (*Project, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		dir, err := filepath.Abs(startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project directory: %w", err)
		}
		return New(dir, DefaultManifest()), nil
	}
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	p := New(filepath.Dir(manifestPath), m)
	p.ManifestPath = manifestPath
	return p, nil
}

// New builds a project over dir with manifest m.
func New(dir string, m Manifest) *Project {
	p := &Project{Dir: dir, Manifest: m}
	for i, r := range m.Roots {
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("root count overflow: %w", err))
		}
		p.Roots = append(p.Roots, SourceRoot{ID: SourceRootID(id), Rel: path.Clean(filepath.ToSlash(r.Path))})
	}
	return p
}

// Layout returns the module layout of the project.
func (p *Project) Layout() Layout {
	return p.Manifest.Layout
}

// Root returns the root with the given id.
func (p *Project) Root(id SourceRootID) SourceRoot {
	return p.Roots[id]
}

// RootOf returns the innermost root containing the project-relative path rel.
func (p *Project) RootOf(rel string) (SourceRootID, bool) {
	best, found := SourceRootID(0), false
	bestLen := -1
	for _, r := range p.Roots {
		if !relWithin(r.Rel, rel) {
			continue
		}
		if len(r.Rel) > bestLen {
			best, found, bestLen = r.ID, true, len(r.Rel)
		}
	}
	return best, found
}

// InRoot returns rel relative to root id.
func (p *Project) InRoot(id SourceRootID, rel string) string {
	r := p.Roots[id].Rel
	if r == "." {
		return rel
	}
	return strings.TrimPrefix(rel, r+"/")
}

// JoinRoot turns a root-relative path into a project-relative one.
func (p *Project) JoinRoot(id SourceRootID, inRoot string) string {
	return path.Join(p.Roots[id].Rel, inRoot)
}

// Abs returns the absolute filesystem path of a project-relative path.
func (p *Project) Abs(rel string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// Rel converts a filesystem path into a project-relative, slash-separated path.
func (p *Project) Rel(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	if !pathWithin(p.Dir, abs) {
		return "", fmt.Errorf("%s is outside project %s", file, p.Dir)
	}
	rel, err := filepath.Rel(p.Dir, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Discover returns the project-relative paths of every source file under the
// roots, sorted and without duplicates. Excluded directory names are skipped.
func (p *Project) Discover(ctx context.Context) ([]string, error) {
	layout := p.Layout()
	seen := make(map[string]struct{})
	var out []string
	for _, r := range p.Roots {
		base := p.Abs(r.Rel)
		err := filepath.WalkDir(base, func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if file != base && slices.Contains(p.Manifest.Exclude, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !layout.IsSource(d.Name()) {
				return nil
			}
			rel, err := p.Rel(file)
			if err != nil {
				return err
			}
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				out = append(out, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan root %q: %w", r.Rel, err)
		}
	}
	slices.Sort(out)
	return out, nil
}

func relWithin(root, rel string) bool {
	return root == "." || rel == root || strings.HasPrefix(rel, root+"/")
}
