// Package syntax wraps tree-sitter parse trees of Rust-style sources.
//
// A Tree is bound to one source.File; spans produced by it carry that file's ID.
// The bindings cache node wrappers lazily in an unguarded map, so walking
// nodes of one tree from several goroutines is a data race. LookupName is the
// one query that may run concurrently; it serializes on the tree.
package syntax

import (
	"context"
	"fmt"
	"sync"

	"renamer/internal/source"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Tree is a parsed source file.
type Tree struct {
	File   source.FileID
	Source []byte
	raw    *sitter.Tree
	mu     sync.Mutex // guards node access in LookupName
}

// Language returns the grammar used for every tree.
func Language() *sitter.Language {
	return rust.GetLanguage()
}

// ParseRaw parses content into a bare tree-sitter tree. It is the cacheable half of Parse.
func ParseRaw(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(Language())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Parse parses file.
func Parse(ctx context.Context, file *source.File) (*Tree, error) {
	raw, err := ParseRaw(ctx, file.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	return Bind(file, raw), nil
}

// Bind attaches an already parsed tree to file. raw must come from file.Content
// and must not be shared with another Tree.
func Bind(file *source.File, raw *sitter.Tree) *Tree {
	return &Tree{File: file.ID, Source: file.Content, raw: raw}
}

// Root returns the source_file node.
func (t *Tree) Root() *sitter.Node {
	return t.raw.RootNode()
}

// HasErrors reports whether the parser had to recover from syntax errors.
func (t *Tree) HasErrors() bool {
	return t.Root().HasError()
}

// Span converts a node range into a source span.
func (t *Tree) Span(n *sitter.Node) source.Span {
	return source.Span{File: t.File, Start: n.StartByte(), End: n.EndByte()}
}

// Text returns the source text of n.
func (t *Tree) Text(n *sitter.Node) string {
	return n.Content(t.Source)
}
