package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestOpenWithoutManifestUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.ManifestPath != "" {
		t.Errorf("unexpected manifest %q", p.ManifestPath)
	}
	if len(p.Roots) != 1 || p.Roots[0].Rel != "." {
		t.Errorf("roots = %+v", p.Roots)
	}
	if p.Layout().Marker != "mod" || p.Layout().Extension != "rs" {
		t.Errorf("layout = %+v", p.Layout())
	}
}

func TestOpenFindsManifestUpwards(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestName, `
[project]
name = "demo"

[layout]
root_files = ["lib.rs"]

[[roots]]
path = "src"

[[roots]]
path = "tests"
`)
	writeFile(t, dir, "src/deep/x.rs", "")

	p, err := Open(filepath.Join(dir, "src", "deep"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.Manifest.Name != "demo" {
		t.Errorf("name = %q", p.Manifest.Name)
	}
	if !slices.Equal(p.Layout().RootFiles, []string{"lib.rs"}) {
		t.Errorf("root files = %v", p.Layout().RootFiles)
	}
	if p.Layout().Marker != "mod" {
		t.Errorf("marker default lost: %q", p.Layout().Marker)
	}
	if len(p.Roots) != 2 || p.Roots[1].Rel != "tests" {
		t.Errorf("roots = %+v", p.Roots)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"escaping root", "[[roots]]\npath = \"../other\"\n", ErrRootEscapes},
		{"bad marker", "[layout]\nmarker = \"a/b\"\n", ErrBadLayout},
		{"empty extension", "[layout]\nextension = \"\"\n", ErrBadLayout},
		{"unknown key", "[layout]\nmarkr = \"mod\"\n", nil},
		{"broken toml", "[layout\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ManifestName, tt.content)
			_, err := LoadManifest(filepath.Join(dir, ManifestName))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}
		})
	}
}

func TestRootOf(t *testing.T) {
	p := New("/p", Manifest{Layout: DefaultLayout(), Roots: []RootSpec{{Path: "."}, {Path: "src"}, {Path: "src/gen"}}})
	tests := []struct {
		rel  string
		want SourceRootID
	}{
		{"build.rs", 0},
		{"src/lib.rs", 1},
		{"src/gen/x.rs", 2},
		{"srcx/y.rs", 0},
	}
	for _, tt := range tests {
		got, ok := p.RootOf(tt.rel)
		if !ok || got != tt.want {
			t.Errorf("RootOf(%q) = %d, %v; want %d", tt.rel, got, ok, tt.want)
		}
	}
	if got := p.InRoot(1, "src/bar/foo.rs"); got != "bar/foo.rs" {
		t.Errorf("InRoot = %q", got)
	}
	if got := p.InRoot(0, "bar/foo.rs"); got != "bar/foo.rs" {
		t.Errorf("InRoot(.) = %q", got)
	}
	if got := p.JoinRoot(1, "bar/foo2.rs"); got != "src/bar/foo2.rs" {
		t.Errorf("JoinRoot = %q", got)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "mod a;")
	writeFile(t, dir, "src/a/mod.rs", "")
	writeFile(t, dir, "src/notes.txt", "")
	writeFile(t, dir, "target/debug/gen.rs", "")
	writeFile(t, dir, "tests/it.rs", "")

	p := New(dir, Manifest{
		Layout:  DefaultLayout(),
		Roots:   []RootSpec{{Path: "."}, {Path: "src"}},
		Exclude: []string{"target"},
	})
	files, err := p.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"src/a/mod.rs", "src/lib.rs", "tests/it.rs"}
	if !slices.Equal(files, want) {
		t.Errorf("Discover = %v, want %v", files, want)
	}
}
