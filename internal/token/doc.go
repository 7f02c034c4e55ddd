// Package token defines lexical token kinds and trivia for Rust-style sources.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span.
//   - Raw identifiers (r#name) are Ident tokens; their Text keeps the r# prefix.
//   - A lone '_' is Underscore, never Ident.
//   - Whitespace and comments are leading Trivia and never appear in the token stream.
package token
