package fix

import (
	"errors"
	"testing"

	"renamer/internal/changefile"
)

func TestSplice(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edits []changefile.Edit
		want  string
	}{
		{
			name:  "replace",
			text:  "let foo = foo + 1;",
			edits: []changefile.Edit{{Start: 4, End: 7, NewText: "bar"}, {Start: 10, End: 13, NewText: "bar"}},
			want:  "let bar = bar + 1;",
		},
		{
			name:  "order does not matter",
			text:  "a b c",
			edits: []changefile.Edit{{Start: 4, End: 5, NewText: "z"}, {Start: 0, End: 1, NewText: "xx"}},
			want:  "xx b z",
		},
		{
			name:  "field shorthand insertions",
			text:  "Foo { i }",
			edits: []changefile.Edit{{Start: 6, End: 6, NewText: "j: "}},
			want:  "Foo { j: i }",
		},
		{
			name:  "insertion at start of replaced range",
			text:  "Foo { i }",
			edits: []changefile.Edit{{Start: 6, End: 7, NewText: "k"}, {Start: 6, End: 6, NewText: "j: "}},
			want:  "Foo { j: k }",
		},
		{
			name:  "insertion at end of replaced range",
			text:  "Foo { i }",
			edits: []changefile.Edit{{Start: 7, End: 7, NewText: ": k"}, {Start: 6, End: 7, NewText: "j"}},
			want:  "Foo { j: k }",
		},
		{
			name:  "same offset keeps order",
			text:  "()",
			edits: []changefile.Edit{{Start: 1, End: 1, NewText: "a"}, {Start: 1, End: 1, NewText: "b"}},
			want:  "(ab)",
		},
		{
			name:  "multibyte text",
			text:  "let ж = 1;",
			edits: []changefile.Edit{{Start: 4, End: 6, NewText: "zh"}},
			want:  "let zh = 1;",
		},
		{
			name: "no edits",
			text: "unchanged",
			want: "unchanged",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Splice([]byte(tt.text), tt.edits)
			if err != nil {
				t.Fatalf("Splice: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpliceDoesNotModifyInput(t *testing.T) {
	in := []byte("abc")
	if _, err := Splice(in, []changefile.Edit{{Start: 1, End: 2, NewText: "XYZ"}}); err != nil {
		t.Fatal(err)
	}
	if string(in) != "abc" {
		t.Errorf("input modified: %q", in)
	}
}

func TestSpliceErrors(t *testing.T) {
	tests := []struct {
		name  string
		edits []changefile.Edit
		want  error
	}{
		{"overlap", []changefile.Edit{{Start: 0, End: 3}, {Start: 2, End: 4}}, ErrConflict},
		{"nested", []changefile.Edit{{Start: 0, End: 5}, {Start: 1, End: 2}}, ErrConflict},
		{"insertion inside", []changefile.Edit{{Start: 0, End: 4}, {Start: 2, End: 2}}, ErrConflict},
		{"duplicate", []changefile.Edit{{Start: 1, End: 2}, {Start: 1, End: 2}}, ErrConflict},
		{"past end", []changefile.Edit{{Start: 3, End: 9}}, ErrOutOfRange},
		{"inverted", []changefile.Edit{{Start: 3, End: 1}}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Splice([]byte("012345"), tt.edits)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestSpansConflict проверяет полуинтервалы и вставки на границах
func TestSpansConflict(t *testing.T) {
	e := func(s, end uint32) changefile.Edit { return changefile.Edit{Start: s, End: end} }
	tests := []struct {
		a, b changefile.Edit
		want bool
	}{
		{e(0, 2), e(2, 4), false},
		{e(0, 3), e(2, 4), true},
		{e(1, 1), e(1, 1), false},
		{e(1, 1), e(1, 3), false},
		{e(3, 3), e(1, 3), false},
		{e(2, 2), e(1, 3), true},
		{e(1, 3), e(2, 2), true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
