package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "3 files")
	_ = tm.Measure("rename", func() error { return errors.New("boom") })
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	if r.Phases[0].Name != "load" || r.Phases[0].Note != "3 files" || r.Phases[0].DurationMS != 1 {
		t.Errorf("unexpected first phase: %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "failed" {
		t.Errorf("failed phase note = %q", r.Phases[1].Note)
	}
	if r.TotalMS != 2 {
		t.Errorf("total = %v, want 2", r.TotalMS)
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)
	tm.End(tm.Begin("resolve"), "")

	s := tm.Summary()
	if !strings.HasPrefix(s, "timings:\n") {
		t.Errorf("summary header missing: %q", s)
	}
	if !strings.Contains(s, "resolve") || !strings.Contains(s, "total") {
		t.Errorf("summary = %q", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	if idx := tm.Begin("x"); idx != -1 {
		t.Errorf("Begin on nil = %d", idx)
	}
	tm.End(0, "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Errorf("nil report = %+v", r)
	}
}
