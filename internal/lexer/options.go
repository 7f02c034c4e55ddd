package lexer

import (
	"renamer/internal/source"
)

// Code names a lexical error.
type Code string

const (
	CodeUnknownChar         Code = "LexUnknownChar"
	CodeBadNumber           Code = "LexBadNumber"
	CodeUnterminatedString  Code = "LexUnterminatedString"
	CodeUnterminatedChar    Code = "LexUnterminatedChar"
	CodeUnterminatedComment Code = "LexUnterminatedBlockComment"
	CodeBadRawIdent         Code = "LexBadRawIdent"
	CodeTokenTooLong        Code = "LexTokenTooLong"
)

// Reporter receives lexical errors. The lexer never formats them itself.
type Reporter interface {
	Report(code Code, span source.Span, msg string)
}

type Options struct {
	Reporter Reporter // может быть nil: ошибки игнорируются, лексинг продолжается
}

func (lx *Lexer) report(code Code, sp source.Span, msg string) {
	lx.errors++
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, sp, msg)
	}
}

// Error is one collected lexical error.
type Error struct {
	Code Code
	Span source.Span
	Msg  string
}

// Collector is a Reporter that keeps every error in order.
type Collector struct {
	Errors []Error
}

func (c *Collector) Report(code Code, span source.Span, msg string) {
	c.Errors = append(c.Errors, Error{Code: code, Span: span, Msg: msg})
}
