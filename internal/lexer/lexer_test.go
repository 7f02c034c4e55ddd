package lexer_test

import (
	"strings"
	"testing"

	"renamer/internal/lexer"
	"renamer/internal/source"
	"renamer/internal/token"
)

// makeTestLexer creates a lexer over input with an error collector attached.
func makeTestLexer(input string) (*lexer.Lexer, *lexer.Collector) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.rs", []byte(input))
	reporter := &lexer.Collector{}
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter}), reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

type expectedToken struct {
	kind token.Kind
	text string
}

func expectTokens(t *testing.T, input string, want []expectedToken) {
	t.Helper()
	lx, rep := makeTestLexer(input)
	got := collectAllTokens(lx)
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected lexer errors for %q: %+v", input, rep.Errors)
	}
	if len(got) != len(want)+1 {
		t.Fatalf("input %q: got %d tokens %v, want %d", input, len(got)-1, got, len(want))
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Text != w.text {
			t.Errorf("input %q token %d = %v %q, want %v %q", input, i, got[i].Kind, got[i].Text, w.kind, w.text)
		}
	}
}

func TestIdentsAndKeywords(t *testing.T) {
	expectTokens(t, "mod foo; fn main() {}", []expectedToken{
		{token.KwMod, "mod"},
		{token.Ident, "foo"},
		{token.Semicolon, ";"},
		{token.KwFn, "fn"},
		{token.Ident, "main"},
		{token.LParen, "("},
		{token.RParen, ")"},
		{token.LBrace, "{"},
		{token.RBrace, "}"},
	})
	expectTokens(t, "self Self _ _x __ r#fn r#foo", []expectedToken{
		{token.KwSelfValue, "self"},
		{token.KwSelfType, "Self"},
		{token.Underscore, "_"},
		{token.Ident, "_x"},
		{token.Ident, "__"},
		{token.Ident, "r#fn"},
		{token.Ident, "r#foo"},
	})
	expectTokens(t, "привет x1", []expectedToken{
		{token.Ident, "привет"},
		{token.Ident, "x1"},
	})
}

func TestRawIdentRejectsPathKeywords(t *testing.T) {
	for _, input := range []string{"r#self", "r#Self", "r#super", "r#crate", "r#_"} {
		lx, rep := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != token.Invalid {
			t.Errorf("%q lexed as %v, want Invalid", input, tok.Kind)
		}
		if len(rep.Errors) != 1 || rep.Errors[0].Code != lexer.CodeBadRawIdent {
			t.Errorf("%q errors = %+v", input, rep.Errors)
		}
	}
}

func TestNumbers(t *testing.T) {
	expectTokens(t, "0 42 1_000u32 0xFF 0b1010 0o17 1.5 2e10 3.0f64 1..2", []expectedToken{
		{token.IntLit, "0"},
		{token.IntLit, "42"},
		{token.IntLit, "1_000u32"},
		{token.IntLit, "0xFF"},
		{token.IntLit, "0b1010"},
		{token.IntLit, "0o17"},
		{token.FloatLit, "1.5"},
		{token.FloatLit, "2e10"},
		{token.FloatLit, "3.0f64"},
		{token.IntLit, "1"},
		{token.DotDot, ".."},
		{token.IntLit, "2"},
	})
	expectTokens(t, "x.0.foo", []expectedToken{
		{token.Ident, "x"},
		{token.Dot, "."},
		{token.IntLit, "0"},
		{token.Dot, "."},
		{token.Ident, "foo"},
	})
}

func TestStringsCharsLifetimes(t *testing.T) {
	expectTokens(t, `"a\"b" b"x" r"raw" r#"q"uote"# 'c' '\n' b'z' 'a 'static`, []expectedToken{
		{token.StringLit, `"a\"b"`},
		{token.ByteStringLit, `b"x"`},
		{token.RawStringLit, `r"raw"`},
		{token.RawStringLit, `r#"q"uote"#`},
		{token.CharLit, "'c'"},
		{token.CharLit, `'\n'`},
		{token.ByteLit, "b'z'"},
		{token.Lifetime, "'a"},
		{token.Lifetime, "'static"},
	})
}

func TestOperators(t *testing.T) {
	expectTokens(t, "a::b -> => += <<= ..= #[x] $y ~", []expectedToken{
		{token.Ident, "a"},
		{token.ColonColon, "::"},
		{token.Ident, "b"},
		{token.Arrow, "->"},
		{token.FatArrow, "=>"},
		{token.PlusAssign, "+="},
		{token.ShlAssign, "<<="},
		{token.DotDotEq, "..="},
		{token.Pound, "#"},
		{token.LBracket, "["},
		{token.Ident, "x"},
		{token.RBracket, "]"},
		{token.Dollar, "$"},
		{token.Ident, "y"},
		{token.Tilde, "~"},
	})
}

func TestTrivia(t *testing.T) {
	lx, rep := makeTestLexer("// c\n/* a /* nested */ b */ /// doc\nfoo")
	tok := lx.Next()
	if tok.Kind != token.Ident || tok.Text != "foo" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("errors: %+v", rep.Errors)
	}
	kinds := make([]token.TriviaKind, 0, len(tok.Leading))
	for _, tr := range tok.Leading {
		kinds = append(kinds, tr.Kind)
	}
	want := []token.TriviaKind{
		token.TriviaLineComment, token.TriviaNewline,
		token.TriviaBlockComment, token.TriviaSpace,
		token.TriviaDocLine, token.TriviaNewline,
	}
	if len(kinds) != len(want) {
		t.Fatalf("trivia kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("trivia[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		code  lexer.Code
	}{
		{`"open`, lexer.CodeUnterminatedString},
		{`r#"open"`, lexer.CodeUnterminatedString},
		{"/* open", lexer.CodeUnterminatedComment},
		{"0x", lexer.CodeBadNumber},
		{"'", lexer.CodeUnterminatedChar},
		{"!§", lexer.CodeUnknownChar},
	}
	for _, tt := range tests {
		lx, rep := makeTestLexer(tt.input)
		collectAllTokens(lx)
		if len(rep.Errors) == 0 || rep.Errors[0].Code != tt.code {
			t.Errorf("%q: errors = %+v, want %s", tt.input, rep.Errors, tt.code)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("Peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("Next after Peek = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("second Next = %q", n.Text)
	}
	for range 2 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("expected sticky EOF, got %v", n.Kind)
		}
	}
}

func TestTokenTooLong(t *testing.T) {
	lx, rep := makeTestLexer(strings.Repeat("a", 1<<16+1))
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if len(rep.Errors) != 1 || rep.Errors[0].Code != lexer.CodeTokenTooLong {
		t.Fatalf("errors = %+v", rep.Errors)
	}
}

func TestLexSingle(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
		kind token.Kind
	}{
		{"foo", true, token.Ident},
		{"_", true, token.Underscore},
		{"r#fn", true, token.Ident},
		{"foo2", true, token.Ident},
		{"fn", true, token.KwFn},
		{"1", true, token.IntLit},
		{"", false, 0},
		{" foo", false, 0},
		{"foo ", false, 0},
		{"foo bar", false, 0},
		{"invalid!", false, 0},
		{"foo//c", false, 0},
		{"r#self", false, 0},
	}
	for _, tt := range tests {
		tok, ok := lexer.LexSingle(tt.text)
		if ok != tt.ok {
			t.Errorf("LexSingle(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && tok.Kind != tt.kind {
			t.Errorf("LexSingle(%q) kind = %v, want %v", tt.text, tok.Kind, tt.kind)
		}
	}
}
