package lexer

import (
	"renamer/internal/source"
	"renamer/internal/token"
)

// maxTokenLength bounds a single token; longer tokens are reported as Invalid.
const maxTokenLength = 1 << 16

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // буфер на один токен
	hold   []token.Trivia // накопленные leading trivia
	errors int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next returns the next significant token with its leading trivia attached.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()
	if lx.cursor.EOF() {
		// leading trivia из hold к EOF не приклеиваем
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	start := lx.cursor.Mark()
	var tok token.Token
	switch {
	case ch == 'r' && lx.cursor.PeekAt(1) == '#' && isIdentStartByte(lx.cursor.PeekAt(2)):
		tok = lx.scanRawIdent()
	case ch == 'r' && lx.rawStringAhead(1):
		tok = lx.scanRawString(start, 1)
	case ch == 'b' && lx.cursor.PeekAt(1) == 'r' && lx.rawStringAhead(2):
		tok = lx.scanRawString(start, 2)
	case ch == 'b' && lx.cursor.PeekAt(1) == '"':
		lx.cursor.Bump()
		tok = lx.scanString(start, token.ByteStringLit)
	case ch == 'b' && lx.cursor.PeekAt(1) == '\'':
		lx.cursor.Bump()
		tok = lx.scanCharOrLifetime(start)
		if tok.Kind == token.CharLit {
			tok.Kind = token.ByteLit
		}
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString(start, token.StringLit)
	case ch == '\'':
		tok = lx.scanCharOrLifetime(start)
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if tok.Span.Len() > maxTokenLength {
		lx.report(CodeTokenTooLong, tok.Span, "token is too long")
		tok.Kind = token.Invalid
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// ErrorCount returns the number of errors reported so far.
func (lx *Lexer) ErrorCount() int {
	return lx.errors
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) emit(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
