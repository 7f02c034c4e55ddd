package changefmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"renamer/internal/changefile"
	"renamer/internal/source"
)

func samplePlan() (*changefile.Plan, *source.FileSet) {
	fs := source.NewFileSet()
	fs.Add("src/main.rs", []byte("mod foo;\nfn main() {\n    foo::run(); foo::stop();\n}\n"), 0)
	plan := &changefile.Plan{
		Schema: changefile.SchemaVersion,
		Label:  "Rename",
		Range:  changefile.Location{Path: "src/main.rs", Start: 4, End: 7},
		Files: []changefile.FileEdits{{
			Path: "src/main.rs",
			Edits: []changefile.Edit{
				{Start: 4, End: 7, NewText: "bar"},
				{Start: 25, End: 28, NewText: "bar"},
				{Start: 37, End: 40, NewText: "bar"},
			},
		}},
		Moves: []changefile.Move{{From: "src/foo.rs", To: "src/bar.rs"}},
	}
	return plan, fs
}

func TestSummary(t *testing.T) {
	plan, _ := samplePlan()
	if got := Summary(plan); got != "Rename: 3 edits in 1 file, 1 move" {
		t.Errorf("Summary = %q", got)
	}
	plan.Moves = nil
	plan.Files[0].Edits = plan.Files[0].Edits[:1]
	if got := Summary(plan); got != "Rename: 1 edit in 1 file" {
		t.Errorf("Summary = %q", got)
	}
}

// TestPrettyPreview проверяет -/+ строки и подчёркивание
func TestPrettyPreview(t *testing.T) {
	plan, fs := samplePlan()
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Rename: 3 edits in 1 file, 1 move",
		"src/main.rs",
		"  1 - mod foo;",
		"          ^^^",
		"  1 + mod bar;",
		"  3 -     foo::run(); foo::stop();",
		"          ^^^         ^^^",
		"  3 +     bar::run(); bar::stop();",
		"move src/foo.rs -> src/bar.rs",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("output mismatch\n got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	fs := source.NewFileSet()
	text := "let 名前 = x;\n"
	fs.Add("a.rs", []byte(text), 0)
	start := uint32(strings.Index(text, "x"))
	plan := &changefile.Plan{Label: "Rename", Files: []changefile.FileEdits{{
		Path:  "a.rs",
		Edits: []changefile.Edit{{Start: start, End: start + 1, NewText: "y"}},
	}}}
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	// "名前" занимает четыре колонки
	if lines[3] != strings.Repeat(" ", 6+4+4+3)+"^" {
		t.Errorf("caret line = %q", lines[3])
	}
}

func TestPrettyInsertions(t *testing.T) {
	fs := source.NewFileSet()
	fs.Add("a.rs", []byte("S { i }\n"), 0)
	plan := &changefile.Plan{Label: "Rename", Files: []changefile.FileEdits{{
		Path:  "a.rs",
		Edits: []changefile.Edit{{Start: 4, End: 4, NewText: "j: "}},
	}}}
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "+ S { j: i }") {
		t.Errorf("missing insertion preview:\n%s", buf.String())
	}
}

func TestPrettyWithoutContents(t *testing.T) {
	plan, _ := samplePlan()
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, nil, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `@4..7 "bar"`) {
		t.Errorf("expected raw edits:\n%s", buf.String())
	}
}

func TestPrettyLimits(t *testing.T) {
	plan, fs := samplePlan()
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, fs, PrettyOpts{MaxLines: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "... 1 more changes") {
		t.Errorf("expected truncation marker:\n%s", buf.String())
	}

	buf.Reset()
	if err := Pretty(&buf, plan, fs, PrettyOpts{NoPreview: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "mod bar") {
		t.Errorf("preview printed with NoPreview:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	plan, fs := samplePlan()
	var buf bytes.Buffer
	if err := Pretty(&buf, plan, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected ANSI escapes with Color")
	}
}

func TestJSON(t *testing.T) {
	plan, fs := samplePlan()
	var buf bytes.Buffer
	if err := JSON(&buf, plan, fs, JSONOpts{IncludePositions: true, IncludePreviews: true}); err != nil {
		t.Fatal(err)
	}
	var out ChangeOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.EditCount != 3 || len(out.Files) != 1 || len(out.Moves) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	e := out.Files[0].Edits[1]
	if e.OldText != "foo" || e.NewText != "bar" {
		t.Errorf("edit texts = %q -> %q", e.OldText, e.NewText)
	}
	if e.Location.StartLine != 3 || e.Location.StartCol != 5 || e.Location.EndCol != 8 {
		t.Errorf("location = %+v", e.Location)
	}
	if len(e.AfterLines) != 1 || e.AfterLines[0] != "    bar::run(); foo::stop();" {
		t.Errorf("after lines = %q", e.AfterLines)
	}
	if out.Range.StartLine != 1 || out.Range.StartCol != 5 {
		t.Errorf("range = %+v", out.Range)
	}
}

func TestBuildOutputWithoutFiles(t *testing.T) {
	plan, _ := samplePlan()
	out := BuildOutput(plan, nil, JSONOpts{IncludePositions: true, IncludePreviews: true})
	e := out.Files[0].Edits[0]
	if e.OldText != "" || e.Location.StartLine != 0 || e.BeforeLines != nil {
		t.Errorf("unexpected details without contents: %+v", e)
	}
}
