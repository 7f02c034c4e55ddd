package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"": LevelOff, "OFF": LevelOff, "error": LevelError, "Phase": LevelPhase, "detail": LevelDetail, "debug": LevelDetail}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if LevelPhase.ShouldEmit(ScopeFile) || !LevelDetail.ShouldEmit(ScopeFile) || LevelOff.ShouldEmit(ScopeDriver) {
		t.Error("unexpected ShouldEmit result")
	}
}

func TestStreamNesting(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	outer, ctx := Start(ctx, ScopeDriver, "rename")
	inner, _ := Start(ctx, ScopePass, "load")
	Point(tr, ScopeFile, "parse", "main.rs") // отфильтровано на phase
	inner.WithExtra("files", "2").End("")
	outer.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "] → rename") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.Contains(lines[1], "]   → load") {
		t.Errorf("line 1 is not nested: %q", lines[1])
	}
	if !strings.Contains(lines[2], "← load") || !strings.HasSuffix(lines[2], "{files=2}") {
		t.Errorf("line 2: %q", lines[2])
	}
	if CurrentSpan(ctx).SpanID != outer.ID() {
		t.Error("context should carry the outer span")
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	Point(tr, ScopeFile, "parse", "lib.rs")
	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("bad json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "file" || ev["detail"] != "lib.rs" {
		t.Errorf("unexpected event: %v", ev)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(2, LevelPhase)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopePass, name, "")
	}
	events := r.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", events)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("dump: %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off: %v %v", tr, err)
	}

	tr, err = New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(tr); !ok {
		t.Error("error level should keep events in a ring")
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopePass, "resolve", 0).End("")
	ring, ok := RingOf(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Error("both mode should fill the ring")
	}
	if !strings.Contains(buf.String(), "resolve") {
		t.Errorf("stream output: %q", buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDisabledSpan(t *testing.T) {
	span, ctx := Start(context.Background(), ScopeDriver, "noop")
	if span.ID() != 0 || span.End("") != 0 {
		t.Error("span without a tracer should be inert")
	}
	if CurrentSpan(ctx).SpanID != 0 {
		t.Error("no span should be current")
	}
	var nilSpan *Span
	nilSpan.WithExtra("k", "v").End("")
}
