package project

import (
	"slices"
	"testing"
)

func TestClassifyModulePath(t *testing.T) {
	layout := DefaultLayout()
	tests := []struct {
		rel  string
		conv Convention
		ok   bool
	}{
		{"foo/mod.rs", DirectoryMarker, true},
		{"a/b/mod.rs", DirectoryMarker, true},
		{"mod.rs", DirectoryMarker, true},
		{"bar/foo.rs", SiblingFile, true},
		{"foo.rs", SiblingFile, true},
		{"modx.rs", SiblingFile, true},
		{"a/mod", DirectoryMarker, true},
		{"", SiblingFile, false},
		{"/", SiblingFile, false},
	}
	for _, tt := range tests {
		conv, ok := ClassifyModulePath(tt.rel, layout)
		if conv != tt.conv || ok != tt.ok {
			t.Errorf("ClassifyModulePath(%q) = %v, %v; want %v, %v", tt.rel, conv, ok, tt.conv, tt.ok)
		}
	}
}

func TestStemAndExt(t *testing.T) {
	for rel, want := range map[string][2]string{
		"a/foo.rs":    {"foo", "rs"},
		"foo":         {"foo", ""},
		"a/b.tar.gz":  {"b.tar", "gz"},
		"dir/.hidden": {"", "hidden"},
	} {
		if got := Stem(rel); got != want[0] {
			t.Errorf("Stem(%q) = %q, want %q", rel, got, want[0])
		}
		if got := Ext(rel); got != want[1] {
			t.Errorf("Ext(%q) = %q, want %q", rel, got, want[1])
		}
	}
}

func TestChildModuleDir(t *testing.T) {
	layout := DefaultLayout()
	for rel, want := range map[string]string{
		"lib.rs":      ".",
		"src/main.rs": "src",
		"bar.rs":      "bar",
		"bar/mod.rs":  "bar",
		"a/b/baz.rs":  "a/b/baz",
		"a/b/mod.rs":  "a/b",
	} {
		if got := layout.ChildModuleDir(rel); got != want {
			t.Errorf("ChildModuleDir(%q) = %q, want %q", rel, got, want)
		}
	}
}

func TestModuleFileCandidates(t *testing.T) {
	got := DefaultLayout().ModuleFileCandidates("bar", "foo")
	want := []string{"bar/foo.rs", "bar/foo/mod.rs"}
	if !slices.Equal(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
	got = DefaultLayout().ModuleFileCandidates(".", "foo")
	want = []string{"foo.rs", "foo/mod.rs"}
	if !slices.Equal(got, want) {
		t.Errorf("candidates at root = %v, want %v", got, want)
	}
}
