package lexer

import (
	"renamer/internal/token"
)

// collectLeadingTrivia gathers the trivia in front of the next significant token.
//   - runs of spaces and tabs collapse into one TriviaSpace
//   - consecutive newlines collapse into one TriviaNewline
//   - "//" and "///" or "//!" run to end of line
//   - "/* */" nests; "/**" and "/*!" are doc blocks
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		case b == '/':
			if lx.scanComment() {
				continue
			}
		}
		return
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

func (lx *Lexer) scanComment() bool {
	start := lx.cursor.Mark()
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}

	switch b1 {
	case '/':
		lx.cursor.Bump()
		lx.cursor.Bump()
		kind := token.TriviaLineComment
		// "////" это обычный комментарий
		if b := lx.cursor.Peek(); (b == '/' && lx.cursor.PeekAt(1) != '/') || b == '!' {
			kind = token.TriviaDocLine
		}
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.pushTrivia(kind, start)
		return true

	case '*':
		lx.cursor.Bump()
		lx.cursor.Bump()
		kind := token.TriviaBlockComment
		if b := lx.cursor.Peek(); (b == '*' && lx.cursor.PeekAt(1) != '/') || b == '!' {
			kind = token.TriviaDocBlock
		}
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			switch c0, c1, _ := lx.cursor.Peek2(); {
			case c0 == '/' && c1 == '*':
				lx.cursor.Bump()
				depth++
			case c0 == '*' && c1 == '/':
				lx.cursor.Bump()
				depth--
			}
			lx.cursor.Bump()
		}
		if depth > 0 {
			lx.report(CodeUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated block comment")
		}
		lx.pushTrivia(kind, start)
		return true
	}
	return false
}
