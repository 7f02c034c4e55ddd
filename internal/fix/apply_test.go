package fix

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"renamer/internal/analysis"
	"renamer/internal/changefile"
	"renamer/internal/project"
	"renamer/internal/rename"
	"renamer/internal/source"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, text := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func hashText(text string) string {
	content, _ := source.Normalize([]byte(text))
	return changefile.HashOf(sha256.Sum256(content))
}

func newPlan(files ...changefile.FileEdits) *changefile.Plan {
	return &changefile.Plan{Schema: changefile.SchemaVersion, Label: rename.Label, Files: files}
}

func TestApplyWritesEdits(t *testing.T) {
	dir := t.TempDir()
	const text = "fn foo() {}\nfn main() { foo(); }\n"
	writeFiles(t, dir, map[string]string{"main.rs": text})
	proj := project.New(dir, project.DefaultManifest())

	plan := newPlan(changefile.FileEdits{
		Path:  "main.rs",
		Hash:  hashText(text),
		Edits: []changefile.Edit{{Start: 3, End: 6, NewText: "bar"}, {Start: 24, End: 27, NewText: "bar"}},
	})
	res, err := Apply(context.Background(), proj, plan, Options{Force: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := readFile(t, dir, "main.rs"); got != "fn bar() {}\nfn main() { bar(); }\n" {
		t.Errorf("main.rs = %q", got)
	}
	if len(res.Files) != 1 || res.Files[0] != (FileChange{Path: "main.rs", EditCount: 2}) {
		t.Errorf("unexpected result: %+v", res.Files)
	}
}

func TestApplyDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.rs": "x", "b.rs": "y"})
	proj := project.New(dir, project.DefaultManifest())
	plan := newPlan(
		changefile.FileEdits{Path: "b.rs", Hash: hashText("y"), Edits: []changefile.Edit{{Start: 0, End: 1, NewText: "z"}}},
		changefile.FileEdits{Path: "a.rs", Hash: hashText("x"), Edits: []changefile.Edit{{Start: 0, End: 1, NewText: "z"}}},
	)
	plan.Moves = []changefile.Move{{From: "a.rs", To: "c.rs", Hash: hashText("x")}}

	res, err := Apply(context.Background(), proj, plan, Options{DryRun: true, Force: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if readFile(t, dir, "a.rs") != "x" || readFile(t, dir, "b.rs") != "y" {
		t.Error("dry run modified files")
	}
	if _, err := os.Stat(filepath.Join(dir, "c.rs")); !errors.Is(err, os.ErrNotExist) {
		t.Error("dry run moved a file")
	}
	if len(res.Files) != 2 || res.Files[0].Path != "a.rs" || len(res.Moves) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestApplyStalePlan(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.rs": "fn a() {}", "b.rs": "fn b() {}"})
	proj := project.New(dir, project.DefaultManifest())
	plan := newPlan(
		changefile.FileEdits{Path: "a.rs", Hash: hashText("fn a() {}"), Edits: []changefile.Edit{{Start: 3, End: 4, NewText: "x"}}},
		changefile.FileEdits{Path: "b.rs", Hash: hashText("fn c() {}"), Edits: []changefile.Edit{{Start: 3, End: 4, NewText: "x"}}},
	)
	_, err := Apply(context.Background(), proj, plan, Options{Force: true})
	if !errors.Is(err, ErrStalePlan) {
		t.Fatalf("got %v, want ErrStalePlan", err)
	}
	if readFile(t, dir, "a.rs") != "fn a() {}" {
		t.Error("a.rs was written although the plan is stale")
	}
}

func TestApplyPreservesLineEndingsAndBOM(t *testing.T) {
	dir := t.TempDir()
	const raw = "\xEF\xBB\xBFfn foo() {}\r\nfn main() { foo(); }\r\n"
	writeFiles(t, dir, map[string]string{"main.rs": raw})
	proj := project.New(dir, project.DefaultManifest())

	// смещения считаются по нормализованному тексту
	plan := newPlan(changefile.FileEdits{
		Path:  "main.rs",
		Hash:  hashText(raw),
		Edits: []changefile.Edit{{Start: 3, End: 6, NewText: "bar"}, {Start: 24, End: 27, NewText: "bar"}},
	})
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "\xEF\xBB\xBFfn bar() {}\r\nfn main() { bar(); }\r\n"
	if got := readFile(t, dir, "main.rs"); got != want {
		t.Errorf("main.rs = %q, want %q", got, want)
	}
}

func TestApplyKeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.rs": "a"})
	p := filepath.Join(dir, "a.rs")
	if err := os.Chmod(p, 0o600); err != nil {
		t.Fatal(err)
	}
	proj := project.New(dir, project.DefaultManifest())
	plan := newPlan(changefile.FileEdits{Path: "a.rs", Hash: hashText("a"), Edits: []changefile.Edit{{Start: 0, End: 1, NewText: "b"}}})
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestApplyMoves(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"foo/mod.rs": "pub fn f() {}", "taken.rs": ""})
	proj := project.New(dir, project.DefaultManifest())

	plan := newPlan()
	plan.Moves = []changefile.Move{{From: "foo/mod.rs", To: "bar/mod.rs", Hash: hashText("pub fn f() {}")}}
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := readFile(t, dir, "bar/mod.rs"); got != "pub fn f() {}" {
		t.Errorf("bar/mod.rs = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "foo/mod.rs")); !errors.Is(err, os.ErrNotExist) {
		t.Error("source of the move still exists")
	}

	plan.Moves = []changefile.Move{{From: "bar/mod.rs", To: "taken.rs"}}
	_, err := Apply(context.Background(), proj, plan, Options{Force: true})
	if !errors.Is(err, ErrDestinationExists) {
		t.Errorf("got %v, want ErrDestinationExists", err)
	}
}

func TestApplyMovesModuleDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.rs":    "mod foo;\n",
		"foo/mod.rs": "pub mod bar;\n",
		"foo/bar.rs": "pub fn b() {}\n",
	})
	proj := project.New(dir, project.DefaultManifest())

	plan := newPlan(changefile.FileEdits{
		Path:  "main.rs",
		Hash:  hashText("mod foo;\n"),
		Edits: []changefile.Edit{{Start: 4, End: 7, NewText: "quux"}},
	})
	plan.Moves = []changefile.Move{{From: "foo/mod.rs", To: "quux/mod.rs", Hash: hashText("pub mod bar;\n")}}
	res, err := Apply(context.Background(), proj, plan, Options{Force: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Moves) != 1 || res.Moves[0].From != "foo" || res.Moves[0].To != "quux" {
		t.Errorf("moves = %+v", res.Moves)
	}
	if got := readFile(t, dir, "quux/mod.rs"); got != "pub mod bar;\n" {
		t.Errorf("quux/mod.rs = %q", got)
	}
	if got := readFile(t, dir, "quux/bar.rs"); got != "pub fn b() {}\n" {
		t.Errorf("quux/bar.rs = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "foo")); !errors.Is(err, os.ErrNotExist) {
		t.Error("old module directory still exists")
	}

	// каталог назначения уже есть
	writeFiles(t, dir, map[string]string{"taken/other.rs": ""})
	plan = newPlan()
	plan.Moves = []changefile.Move{{From: "quux/mod.rs", To: "taken/mod.rs"}}
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); !errors.Is(err, ErrDestinationExists) {
		t.Errorf("got %v, want ErrDestinationExists", err)
	}
}

func TestApplyMovesChildDirectoryOfSiblingFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"foo.rs":     "pub mod bar;\n",
		"foo/bar.rs": "pub fn b() {}\n",
	})
	proj := project.New(dir, project.DefaultManifest())

	plan := newPlan()
	plan.Moves = []changefile.Move{{From: "foo.rs", To: "quux.rs"}}
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := readFile(t, dir, "quux.rs"); got != "pub mod bar;\n" {
		t.Errorf("quux.rs = %q", got)
	}
	if got := readFile(t, dir, "quux/bar.rs"); got != "pub fn b() {}\n" {
		t.Errorf("quux/bar.rs = %q", got)
	}
}

func TestApplyRejectsPathsOutsideProject(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, map[string]string{"outside.txt": "safe\n", "proj/main.rs": "fn main() {}\n"})
	proj := project.New(filepath.Join(base, "proj"), project.DefaultManifest())

	plan := newPlan(changefile.FileEdits{
		Path:  "../outside.txt",
		Hash:  hashText("safe\n"),
		Edits: []changefile.Edit{{Start: 0, End: 4, NewText: "changed"}},
	})
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); !errors.Is(err, changefile.ErrUnsafePath) {
		t.Errorf("got %v, want ErrUnsafePath", err)
	}
	if got := readFile(t, base, "outside.txt"); got != "safe\n" {
		t.Errorf("outside.txt = %q", got)
	}

	plan = newPlan()
	plan.Moves = []changefile.Move{{From: "main.rs", To: "../main.rs"}}
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); !errors.Is(err, changefile.ErrUnsafePath) {
		t.Errorf("move: got %v, want ErrUnsafePath", err)
	}
}

func gitCommitAll(t *testing.T, dir string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := wt.AddGlob("."); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestApplyRefusesDirtyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.rs": "fn a() {}", "b.rs": "fn b() {}"})
	gitCommitAll(t, dir)
	writeFiles(t, dir, map[string]string{"b.rs": "fn b2() {}"})
	proj := project.New(dir, project.DefaultManifest())

	clean := newPlan(changefile.FileEdits{Path: "a.rs", Hash: hashText("fn a() {}"), Edits: []changefile.Edit{{Start: 3, End: 4, NewText: "x"}}})
	if _, err := Apply(context.Background(), proj, clean, Options{DryRun: true}); err != nil {
		t.Fatalf("clean file refused: %v", err)
	}

	dirty := newPlan(changefile.FileEdits{Path: "b.rs", Hash: hashText("fn b2() {}"), Edits: []changefile.Edit{{Start: 3, End: 5, NewText: "x"}}})
	_, err := Apply(context.Background(), proj, dirty, Options{})
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("got %v, want ErrDirtyWorktree", err)
	}
	if _, err := Apply(context.Background(), proj, dirty, Options{Force: true}); err != nil {
		t.Fatalf("forced apply: %v", err)
	}
	if got := readFile(t, dir, "b.rs"); got != "fn x() {}" {
		t.Errorf("b.rs = %q", got)
	}
}

func TestApplyRenamePlanEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.rs": "mod foo;\nfn main() { foo::bar(); }\n",
		"foo.rs":  "pub fn bar() {}\n",
	})
	proj := project.New(dir, project.DefaultManifest())
	host, err := analysis.NewHost(analysis.Options{})
	if err != nil {
		t.Fatal(err)
	}
	snap, err := host.Load(context.Background(), proj)
	if err != nil {
		t.Fatal(err)
	}
	main, ok := snap.FileByPath("main.rs")
	if !ok {
		t.Fatal("main.rs not loaded")
	}
	res, err := rename.Rename(snap, rename.Position{File: main, Offset: 5}, "quux")
	if err != nil {
		t.Fatal(err)
	}
	plan, err := changefile.FromResult(snap, res)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(context.Background(), proj, plan, Options{Force: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := readFile(t, dir, "main.rs"); got != "mod quux;\nfn main() { quux::bar(); }\n" {
		t.Errorf("main.rs = %q", got)
	}
	if got := readFile(t, dir, "quux.rs"); got != "pub fn bar() {}\n" {
		t.Errorf("quux.rs = %q", got)
	}
}
