// Package sema implements the type checker: lazy per-symbol and
// per-expression type inference, assignability checking, builtin overload
// resolution and resource-body validation against provider schemas.
package sema

import (
	"context"
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/schema"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// Options configure a semantic pass over one compilation unit.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Types    *types.Interner
	Schemas  schema.Provider
}

// Result stores the semantic artefacts produced by the checker.
type Result struct {
	Types       *types.Interner
	SymbolTypes map[symbols.SymbolID]types.TypeID
	ExprTypes   map[ast.ExprID]types.TypeID
}

// Check runs type inference over every top-level declaration in source order,
// with a cancellation checkpoint before each one. On cancellation the partial
// result must be discarded by the caller.
func Check(ctx context.Context, tree *ast.Tree, opts Options) (Result, error) {
	res := Result{
		Types:       opts.Types,
		SymbolTypes: make(map[symbols.SymbolID]types.TypeID),
		ExprTypes:   make(map[ast.ExprID]types.TypeID),
	}
	if res.Types == nil {
		var strs *source.Interner
		if opts.Symbols != nil && opts.Symbols.Table != nil {
			strs = opts.Symbols.Table.Strings
		}
		res.Types = types.NewInterner(strs)
	}
	if tree == nil || opts.Symbols == nil {
		return res, nil
	}

	c := &checker{
		tree:       tree,
		syms:       opts.Symbols,
		in:         res.Types,
		schemas:    opts.Schemas,
		reporter:   opts.Reporter,
		result:     &res,
		inProgress: make(map[symbols.SymbolID]struct{}),
		refs:       make(map[source.Span]symbols.SymbolID, len(opts.Symbols.Refs)),
		loopVars:   make(map[source.Span]symbols.SymbolID),
		overloads:  builtinOverloads(res.Types),
	}
	for _, ref := range opts.Symbols.Refs {
		c.refs[ref.Span] = ref.Symbol
	}
	// Loop variables have no top-level declaration; index them by their
	// declared span so the enclosing for-expression can type them.
	table := opts.Symbols.Table
	for i := 1; i <= table.Symbols.Len(); i++ {
		id := symbols.SymbolID(i)
		if sym := table.Symbols.Get(id); sym != nil && sym.Kind == symbols.SymbolLoopVariable {
			c.loopVars[sym.Span] = id
		}
	}

	for _, declID := range tree.Roots {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		c.checkDecl(declID)
	}
	return res, nil
}

type checker struct {
	tree     *ast.Tree
	syms     *symbols.Result
	in       *types.Interner
	schemas  schema.Provider
	reporter diag.Reporter
	result   *Result

	// inProgress guards lazy symbol typing against re-entry; a cycle that
	// escaped the dependency pass resolves to the error type instead of
	// recursing.
	inProgress map[symbols.SymbolID]struct{}
	refs       map[source.Span]symbols.SymbolID
	loopVars   map[source.Span]symbols.SymbolID
	overloads  map[string][]overload
}

func (c *checker) checkDecl(declID ast.DeclID) {
	sym, ok := c.syms.DeclSymbols[declID]
	if !ok {
		return
	}
	c.symbolType(sym)
}

// symbolType computes and memoizes the type of a declared symbol. Placeholder
// and builtin symbols carry fixed types and never hit the declaration path.
func (c *checker) symbolType(id symbols.SymbolID) types.TypeID {
	if t, ok := c.result.SymbolTypes[id]; ok {
		return t
	}
	sym := c.syms.Table.Symbols.Get(id)
	if sym == nil {
		return c.in.Error()
	}
	if sym.Flags&symbols.SymbolFlagPlaceholder != 0 {
		t := c.in.Error()
		c.result.SymbolTypes[id] = t
		return t
	}
	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		t := c.in.Any()
		c.result.SymbolTypes[id] = t
		return t
	}
	if _, busy := c.inProgress[id]; busy {
		return c.in.Error()
	}
	c.inProgress[id] = struct{}{}
	t := c.declaredType(sym)
	delete(c.inProgress, id)
	c.result.SymbolTypes[id] = t
	return t
}

func (c *checker) declaredType(sym *symbols.Symbol) types.TypeID {
	decl := c.tree.Decl(sym.Decl)
	if decl == nil {
		// Loop variables are typed by the enclosing for-expression before
		// their body is visited; reaching here means the body was entered
		// through a stored reference, outside any for pass.
		if sym.Kind == symbols.SymbolLoopVariable {
			return c.in.Error()
		}
		return c.in.Any()
	}
	switch decl.Kind {
	case ast.DeclParam:
		return c.annotatedType(decl)
	case ast.DeclOutput:
		return c.annotatedType(decl)
	case ast.DeclVar:
		return c.exprType(decl.Value)
	case ast.DeclResource:
		return c.resourceType(decl)
	case ast.DeclModule:
		// Module outputs are opaque until cross-unit linking.
		c.exprType(decl.Value)
		return c.in.Any()
	case ast.DeclImport:
		return c.in.Any()
	default:
		return c.in.Error()
	}
}

// annotatedType types a param or output: the declared annotation governs, the
// value (default for params) must be assignable to it. Without an annotation
// the value's inferred type is used as-is.
func (c *checker) annotatedType(decl *ast.Decl) types.TypeID {
	declared := types.NoTypeID
	if decl.Type != source.NoStringID {
		syntax := c.syms.Table.Strings.MustLookup(decl.Type)
		parsed, err := types.ParseSyntax(c.in, syntax)
		if err != nil {
			c.errorf(diag.TypeBadTypeSyntax, decl.TypeSpan, "invalid type %q", syntax)
			declared = c.in.Error()
		} else {
			declared = parsed
		}
	}

	if !decl.Value.IsValid() {
		if declared == types.NoTypeID {
			return c.in.Any()
		}
		return declared
	}
	valueType := c.exprType(decl.Value)
	if declared == types.NoTypeID {
		return valueType
	}
	if !c.in.AssignableTo(valueType, declared) {
		expr := c.tree.Expr(decl.Value)
		c.errorf(diag.TypeMismatch, expr.Span, "cannot assign %s to %s",
			c.in.Format(valueType), c.in.Format(declared))
	}
	return declared
}

func (c *checker) errorf(code diag.Code, span source.Span, format string, args ...any) {
	if c.reporter == nil {
		return
	}
	diag.ReportError(c.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// poisoned reports whether any of the given types is the error type; such
// operands suppress every follow-up diagnostic on the expression.
func (c *checker) poisoned(ids ...types.TypeID) bool {
	for _, id := range ids {
		if c.in.Kind(id) == types.KindError {
			return true
		}
	}
	return false
}
