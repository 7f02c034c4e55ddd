package lexer

import (
	"renamer/internal/token"
)

// scanString scans "..." with the cursor on the opening quote. Newlines are
// allowed inside; escapes are skipped without validation.
func (lx *Lexer) scanString(start Mark, kind token.Kind) token.Token {
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '"':
			lx.bumpSuffix()
			return lx.emit(kind, start)
		case '\\':
			lx.cursor.Bump()
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.report(CodeUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// rawStringAhead reports whether r"..." or r#"..."# starts n bytes ahead.
func (lx *Lexer) rawStringAhead(n uint32) bool {
	for lx.cursor.PeekAt(n) == '#' {
		n++
	}
	return lx.cursor.PeekAt(n) == '"'
}

// scanRawString scans a raw string whose prefix (r or br) is prefix bytes long.
func (lx *Lexer) scanRawString(start Mark, prefix int) token.Token {
	for range prefix {
		lx.cursor.Bump()
	}
	hashes := 0
	for lx.cursor.Eat('#') {
		hashes++
	}
	lx.cursor.Bump() // '"'

	for !lx.cursor.EOF() {
		if lx.cursor.Bump() != '"' {
			continue
		}
		closing := 0
		for closing < hashes && lx.cursor.Eat('#') {
			closing++
		}
		if closing == hashes {
			return lx.emit(token.RawStringLit, start)
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.report(CodeUnterminatedString, tok.Span, "unterminated raw string")
	return tok
}

// scanCharOrLifetime disambiguates 'x' from 'label with the cursor on the quote.
func (lx *Lexer) scanCharOrLifetime(start Mark) token.Token {
	lx.cursor.Bump() // '\''

	if lx.cursor.Peek() == '\\' {
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			b := lx.cursor.Bump()
			if b == '\\' {
				lx.cursor.Bump()
				continue
			}
			if b == '\'' {
				return lx.emit(token.CharLit, start)
			}
		}
		tok := lx.emit(token.Invalid, start)
		lx.report(CodeUnterminatedChar, tok.Span, "unterminated character literal")
		return tok
	}

	// 'x' : одна руна и закрывающая кавычка
	if _, sz := lx.peekRune(); sz > 0 && lx.cursor.PeekAt(uint32(sz)) == '\'' {
		lx.bumpRune()
		lx.cursor.Bump()
		return lx.emit(token.CharLit, start)
	}

	if lx.bumpIdent() {
		return lx.emit(token.Lifetime, start)
	}

	if !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.bumpRune()
	}
	tok := lx.emit(token.Invalid, start)
	lx.report(CodeUnterminatedChar, tok.Span, "unterminated character literal")
	return tok
}
