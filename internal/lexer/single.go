package lexer

import (
	"renamer/internal/source"
	"renamer/internal/token"
)

// Tokenize lexes file to EOF and returns its significant tokens (EOF excluded)
// with every error that was reported on the way.
func Tokenize(file *source.File) ([]token.Token, []Error) {
	var errs Collector
	lx := New(file, Options{Reporter: &errs})
	var toks []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks, errs.Errors
		}
		toks = append(toks, tok)
	}
}

// LexSingle lexes text on its own and succeeds only when it is exactly one
// error-free token with no surrounding whitespace or comments.
func LexSingle(text string) (token.Token, bool) {
	if text == "" {
		return token.Token{}, false
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("<input>", []byte(text)))

	toks, errs := Tokenize(file)
	if len(errs) != 0 || len(toks) != 1 {
		return token.Token{}, false
	}
	tok := toks[0]
	if len(tok.Leading) != 0 || tok.Span.Start != 0 || int(tok.Span.End) != len(text) {
		return token.Token{}, false
	}
	return tok, true
}
