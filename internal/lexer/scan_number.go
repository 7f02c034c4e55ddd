package lexer

import (
	"renamer/internal/token"
)

// scanNumber handles 0b/0o/0x integers, decimals with optional fraction and
// exponent, '_' separators, and type suffixes such as u8 or f64.
// "1..2" and "1.foo()" keep the dot out of the literal.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x', 'X':
			digit = isHex
		}
		if digit != nil {
			lx.cursor.Bump()
			lx.cursor.Bump()
			n := 0
			for b := lx.cursor.Peek(); digit(b) || b == '_'; b = lx.cursor.Peek() {
				if b != '_' {
					n++
				}
				lx.cursor.Bump()
			}
			if n == 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.report(CodeBadNumber, sp, "expected digits after base prefix")
				return lx.emit(token.Invalid, start)
			}
			lx.bumpSuffix()
			return lx.emit(kind, start)
		}
	}

	lx.bumpDecimals()

	// дробная часть
	if lx.cursor.Peek() == '.' {
		next := lx.cursor.PeekAt(1)
		if next != '.' && !isIdentStartByte(next) && next < utf8RuneSelf {
			lx.cursor.Bump()
			kind = token.FloatLit
			lx.bumpDecimals()
		}
	}

	// экспонента
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			lx.bumpDecimals()
		} else {
			// "1e" без цифр: оставляем 'e' суффиксу
			lx.cursor.Reset(mark)
		}
	}

	lx.bumpSuffix()
	return lx.emit(kind, start)
}

func (lx *Lexer) bumpDecimals() {
	for b := lx.cursor.Peek(); isDec(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) bumpSuffix() {
	if isIdentStartByte(lx.cursor.Peek()) {
		lx.bumpIdent()
	}
}
