package ast

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/source"
)

// Tree is one parsed compilation unit. Decls and Exprs are arenas with a
// reserved zero slot so that DeclID/ExprID zero values mean "none".
type Tree struct {
	File  source.FileID
	Span  source.Span
	Roots []DeclID // top-level declarations in source order
	Decls []Decl
	Exprs []Expr
}

// NewTree allocates an empty tree for the given file.
func NewTree(file source.FileID, span source.Span) *Tree {
	return &Tree{
		File:  file,
		Span:  span,
		Decls: make([]Decl, 1, 16), // index 0 reserved for NoDeclID
		Exprs: make([]Expr, 1, 64), // index 0 reserved for NoExprID
	}
}

// AddDecl allocates a declaration node and returns its handle. Top-level
// declarations must additionally be appended to Roots by the caller in
// source order.
func (t *Tree) AddDecl(d Decl) DeclID {
	value, err := safecast.Conv[uint32](len(t.Decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	t.Decls = append(t.Decls, d)
	return DeclID(value)
}

// AddRoot allocates a top-level declaration and records it in Roots.
func (t *Tree) AddRoot(d Decl) DeclID {
	id := t.AddDecl(d)
	t.Roots = append(t.Roots, id)
	return id
}

// AddExpr allocates an expression node and returns its handle.
func (t *Tree) AddExpr(e Expr) ExprID {
	value, err := safecast.Conv[uint32](len(t.Exprs))
	if err != nil {
		panic(fmt.Errorf("expr arena overflow: %w", err))
	}
	t.Exprs = append(t.Exprs, e)
	return ExprID(value)
}

// Decl returns the declaration node or nil for an invalid handle.
func (t *Tree) Decl(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(t.Decls) {
		return nil
	}
	return &t.Decls[id]
}

// Expr returns the expression node or nil for an invalid handle.
func (t *Tree) Expr(id ExprID) *Expr {
	if !id.IsValid() || int(id) >= len(t.Exprs) {
		return nil
	}
	return &t.Exprs[id]
}
