package rename_test

import (
	"testing"

	"renamer/internal/analysis"
	"renamer/internal/project"
	"renamer/internal/rename"
	"renamer/internal/source"

	"github.com/stretchr/testify/assert"
)

func TestEditForOccurrence(t *testing.T) {
	sp := source.Span{File: 3, Start: 10, End: 13}
	tests := []struct {
		kind analysis.OccurrenceKind
		want rename.TextEdit
	}{
		{analysis.Normal, rename.TextEdit{Span: sp, NewText: "bar"}},
		{analysis.FieldShorthandForField, rename.TextEdit{Span: source.Span{File: 3, Start: 10, End: 10}, NewText: "bar: "}},
		{analysis.FieldShorthandForLocal, rename.TextEdit{Span: source.Span{File: 3, Start: 13, End: 13}, NewText: ": bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := rename.EditForOccurrence(analysis.Occurrence{Span: sp, Kind: tt.kind}, "bar")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditsForOccurrencesKeepsOrder(t *testing.T) {
	occs := []analysis.Occurrence{
		{Span: source.Span{File: 1, Start: 20, End: 21}},
		{Span: source.Span{File: 0, Start: 5, End: 6}, Kind: analysis.FieldShorthandForLocal},
		{Span: source.Span{File: 1, Start: 2, End: 3}},
	}
	edits := rename.EditsForOccurrences(occs, "n")
	assert.Len(t, edits, 3)
	assert.Equal(t, uint32(20), edits[0].Span.Start)
	assert.Equal(t, uint32(6), edits[1].Span.Start)
	assert.Equal(t, uint32(2), edits[2].Span.Start)
	assert.Empty(t, rename.EditsForOccurrences(nil, "n"))
}

func TestPlanModuleMove(t *testing.T) {
	layout := project.DefaultLayout()
	tests := []struct {
		rel, name string
		want      string
		ok        bool
	}{
		{"foo.rs", "bar", "bar.rs", true},
		{"bar/foo.rs", "foo2", "bar/foo2.rs", true},
		{"foo/mod.rs", "bar", "bar/mod.rs", true},
		{"a/b/foo/mod.rs", "bar", "a/b/bar/mod.rs", true},
		{"mod.rs", "bar", "bar/mod.rs", true},
		{"foo.rs", "r#type", "type.rs", true},
		{"foo", "bar", "bar", true},
		{".rs", "bar", "", false},
		{"", "bar", "", false},
	}
	for _, tt := range tests {
		got, ok := rename.PlanModuleMove(tt.rel, tt.name, layout)
		assert.Equal(t, tt.ok, ok, "%s -> %s", tt.rel, tt.name)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.rel, tt.name)
	}

	custom := project.Layout{Marker: "index", Extension: "src"}
	got, ok := rename.PlanModuleMove("x/foo/index.src", "bar", custom)
	assert.True(t, ok)
	assert.Equal(t, "x/bar/index.src", got)
	got, ok = rename.PlanModuleMove("x/mod.src", "bar", custom)
	assert.True(t, ok)
	assert.Equal(t, "x/bar.src", got, "mod is an ordinary stem under a custom marker")
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"foo", true},
		{"_", true},
		{"_foo", true},
		{"r#fn", true},
		{"Ünïcode", true},
		{"fn", false},
		{"self", false},
		{"r#self", false},
		{"foo bar", false},
		{"foo!", false},
		{"42", false},
		{" foo", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := rename.ValidateName(tt.name)
		if tt.ok {
			assert.NoError(t, err, tt.name)
			assert.Equal(t, tt.name, got)
			continue
		}
		assert.ErrorIs(t, err, rename.ErrInvalidName, tt.name)
	}

	// decomposed "é" comes back composed
	got, err := rename.ValidateName("café")
	assert.NoError(t, err)
	assert.Equal(t, "café", got)
}
