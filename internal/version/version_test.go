package version

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func TestVersionString(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if got := VersionString(); got != "renamer 1.2.3" {
		t.Errorf("VersionString() = %q", got)
	}
	Version = "  "
	if got := VersionString(); got != "renamer dev" {
		t.Errorf("VersionString() = %q, want dev fallback", got)
	}
}

func TestFprintWithoutColor(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	tests := map[string]string{
		"0.1.0-dev": "0.1.0-dev",
		"2.0.1":     "2.0.1",
		"nightly":   "nightly",
	}
	for in, want := range tests {
		Version = in
		var buf bytes.Buffer
		Fprint(&buf)
		if buf.String() != want {
			t.Errorf("Fprint(%q) = %q, want %q", in, buf.String(), want)
		}
	}
}

func TestOptionalFieldsDefaultEmpty(t *testing.T) {
	// GitCommit and BuildDate are only set through -ldflags
	if GitCommit != "" || GitMessage != "" || BuildDate != "" {
		t.Errorf("unexpected build metadata: %q %q %q", GitCommit, GitMessage, BuildDate)
	}
}
