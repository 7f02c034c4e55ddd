package rename

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"renamer/internal/lexer"
	"renamer/internal/token"
)

var (
	// ErrInvalidName reports a candidate that is not a single identifier or `_`.
	ErrInvalidName = errors.New("invalid identifier")
	// ErrNotRenamable reports a position that names nothing renamable.
	ErrNotRenamable = errors.New("no references found at position")
	// ErrNoOccurrences reports a resolved symbol without any occurrence to edit.
	ErrNoOccurrences = errors.New("nothing to rename")
)

// ValidateName checks that name lexes to exactly one identifier token, raw
// identifiers included, or to the `_` token. The accepted name is returned in
// NFC form. Keywords are rejected by the lexer; nothing else is checked.
func ValidateName(name string) (string, error) {
	name = norm.NFC.String(name)
	tok, ok := lexer.LexSingle(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	switch tok.Kind {
	case token.Ident, token.Underscore:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q is %s", ErrInvalidName, name, tok.Kind)
	}
}
