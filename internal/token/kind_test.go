package token_test

import (
	"testing"

	"renamer/internal/token"
)

func TestKindClasses(t *testing.T) {
	tests := []struct {
		kind                 token.Kind
		keyword, lit, punct bool
	}{
		{token.Ident, false, false, false},
		{token.KwFn, true, false, false},
		{token.KwWhile, true, false, false},
		{token.KwTrue, true, false, false},
		{token.IntLit, false, true, false},
		{token.RawStringLit, false, true, false},
		{token.Plus, false, false, true},
		{token.Underscore, false, false, true},
		{token.Lifetime, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsKeyword(); got != tt.keyword {
			t.Errorf("%v.IsKeyword() = %v", tt.kind, got)
		}
		if got := tt.kind.IsLiteral(); got != tt.lit {
			t.Errorf("%v.IsLiteral() = %v", tt.kind, got)
		}
		if got := tt.kind.IsPunct(); got != tt.punct {
			t.Errorf("%v.IsPunct() = %v", tt.kind, got)
		}
	}
}

func TestKindNamesComplete(t *testing.T) {
	for k := token.Invalid; k <= token.Underscore; k++ {
		if k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	for text, want := range map[string]token.Kind{
		"fn":     token.KwFn,
		"mod":    token.KwMod,
		"self":   token.KwSelfValue,
		"Self":   token.KwSelfType,
		"struct": token.KwStruct,
	} {
		got, ok := token.LookupKeyword(text)
		if !ok || got != want {
			t.Errorf("LookupKeyword(%q) = %v, %v; want %v", text, got, ok, want)
		}
	}
	for _, text := range []string{"Fn", "foo", "nothing", "_"} {
		if _, ok := token.LookupKeyword(text); ok {
			t.Errorf("LookupKeyword(%q) must fail", text)
		}
	}
}

func TestTokenName(t *testing.T) {
	raw := token.Token{Kind: token.Ident, Text: "r#fn"}
	if !raw.IsRaw() || raw.Name() != "fn" {
		t.Errorf("raw ident: IsRaw=%v Name=%q", raw.IsRaw(), raw.Name())
	}
	plain := token.Token{Kind: token.Ident, Text: "foo"}
	if plain.IsRaw() || plain.Name() != "foo" {
		t.Errorf("plain ident: IsRaw=%v Name=%q", plain.IsRaw(), plain.Name())
	}
}
