package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token, raw identifiers included.
	Ident
	// Lifetime represents a lifetime or label such as 'a.
	Lifetime

	KwAs
	KwAsync
	KwAwait
	KwBreak
	KwConst
	KwContinue
	KwCrate
	KwDyn
	KwElse
	KwEnum
	KwExtern
	KwFalse
	KwFn
	KwFor
	KwIf
	KwImpl
	KwIn
	KwLet
	KwLoop
	KwMatch
	KwMod
	KwMove
	KwMut
	KwPub
	KwRef
	KwReturn
	KwSelfValue // self
	KwSelfType  // Self
	KwStatic
	KwStruct
	KwSuper
	KwTrait
	KwTrue
	KwType
	KwUnsafe
	KwUse
	KwWhere
	KwWhile

	IntLit
	FloatLit
	CharLit
	ByteLit
	StringLit
	ByteStringLit
	RawStringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	ColonColon    // ::
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	DotDot        // ..
	DotDotEq      // ..=
	DotDotDot     // ...
	Arrow         // ->
	FatArrow      // =>
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	At            // @
	Pound         // #
	Dollar        // $
	Tilde         // ~
	Underscore    // _

	kindCount
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Ident:         "Ident",
	Lifetime:      "Lifetime",
	KwAs:          "as",
	KwAsync:       "async",
	KwAwait:       "await",
	KwBreak:       "break",
	KwConst:       "const",
	KwContinue:    "continue",
	KwCrate:       "crate",
	KwDyn:         "dyn",
	KwElse:        "else",
	KwEnum:        "enum",
	KwExtern:      "extern",
	KwFalse:       "false",
	KwFn:          "fn",
	KwFor:         "for",
	KwIf:          "if",
	KwImpl:        "impl",
	KwIn:          "in",
	KwLet:         "let",
	KwLoop:        "loop",
	KwMatch:       "match",
	KwMod:         "mod",
	KwMove:        "move",
	KwMut:         "mut",
	KwPub:         "pub",
	KwRef:         "ref",
	KwReturn:      "return",
	KwSelfValue:   "self",
	KwSelfType:    "Self",
	KwStatic:      "static",
	KwStruct:      "struct",
	KwSuper:       "super",
	KwTrait:       "trait",
	KwTrue:        "true",
	KwType:        "type",
	KwUnsafe:      "unsafe",
	KwUse:         "use",
	KwWhere:       "where",
	KwWhile:       "while",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	CharLit:       "CharLit",
	ByteLit:       "ByteLit",
	StringLit:     "StringLit",
	ByteStringLit: "ByteStringLit",
	RawStringLit:  "RawStringLit",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	EqEq:          "==",
	Bang:          "!",
	BangEq:        "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Shl:           "<<",
	Shr:           ">>",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	AndAnd:        "&&",
	OrOr:          "||",
	Question:      "?",
	Colon:         ":",
	ColonColon:    "::",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	DotDot:        "..",
	DotDotEq:      "..=",
	DotDotDot:     "...",
	Arrow:         "->",
	FatArrow:      "=>",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	At:            "@",
	Pound:         "#",
	Dollar:        "$",
	Tilde:         "~",
	Underscore:    "_",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwAs && k <= KwWhile
}

// IsLiteral reports whether k is a literal kind. true/false are keywords.
func (k Kind) IsLiteral() bool {
	return k >= IntLit && k <= RawStringLit
}

// IsPunct reports whether k is an operator or punctuation token.
func (k Kind) IsPunct() bool {
	return k >= Plus && k <= Underscore
}
