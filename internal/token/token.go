package token

import (
	"strings"

	"renamer/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsRaw reports whether the token is a raw identifier.
func (t Token) IsRaw() bool {
	return t.Kind == Ident && strings.HasPrefix(t.Text, RawPrefix)
}

// Name returns the identifier text without a raw prefix.
func (t Token) Name() string {
	return strings.TrimPrefix(t.Text, RawPrefix)
}
