package lexer

import (
	"renamer/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword scans an identifier and classifies it with LookupKeyword.
// A lone '_' becomes Underscore.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	if !lx.bumpIdent() {
		return lx.scanOperatorOrPunct()
	}

	tok := lx.emit(token.Ident, start)
	if tok.Text == "_" {
		tok.Kind = token.Underscore
		return tok
	}
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}

// scanRawIdent scans r#name. The caller has checked that an identifier start follows "r#".
func (lx *Lexer) scanRawIdent() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // r
	lx.cursor.Bump() // #
	lx.bumpIdent()

	tok := lx.emit(token.Ident, start)
	if name := tok.Name(); !token.CanBeRaw(name) {
		lx.report(CodeBadRawIdent, tok.Span, "`"+name+"` cannot be a raw identifier")
		tok.Kind = token.Invalid
	}
	return tok
}

// bumpIdent consumes [start continue*] and reports whether anything was consumed.
func (lx *Lexer) bumpIdent() bool {
	r, sz := lx.peekRune()
	switch {
	case sz == 0:
		return false
	case r < utf8RuneSelf:
		if !isIdentStartByte(byte(r)) {
			return false
		}
		lx.cursor.Bump()
	default:
		if !isIdentStartRune(r) {
			return false
		}
		lx.bumpRune()
	}
	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) || lx.cursor.EOF() {
				return true
			}
			lx.cursor.Bump()
			continue
		}
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			return true
		}
		lx.bumpRune()
	}
}
