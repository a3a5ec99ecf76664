package symbols

import (
	"context"
	"fmt"
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
)

// BindOptions controls a bind pass for a single compilation unit.
type BindOptions struct {
	Table    *Table
	Hints    Hints
	Reporter diag.Reporter
	Validate bool
}

// Ref records one resolved identifier occurrence, for editor queries.
type Ref struct {
	Span   source.Span
	Symbol SymbolID
}

// Result captures the bind artefacts for one compilation unit.
type Result struct {
	Table       *Table
	Tree        *ast.Tree
	FileScope   ScopeID
	DeclSymbols map[ast.DeclID]SymbolID
	Refs        []Ref
}

// Builtin function names visible in every scope. Their overload signatures
// live in the type checker; binding only needs the symbols so references
// resolve.
var builtinFunctions = []string{
	"concat", "length", "toUpper", "toLower", "min", "max",
	"range", "string", "int", "resourceId",
}

// BuiltinNamespace is the namespace symbol grouping builtin functions, so
// both concat(...) and sys.concat(...) resolve.
const BuiltinNamespace = "sys"

// Bind walks the tree and produces the symbol table, scope tree and the
// dependency (descendants) relation for one unit. Top-level declarations are
// processed in source order with a cancellation checkpoint before each one;
// on cancellation the partial result must be discarded by the caller.
func Bind(ctx context.Context, tree *ast.Tree, strings *source.Interner, opts BindOptions) (Result, error) {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, strings)
	}
	result := Result{
		Table:       table,
		Tree:        tree,
		DeclSymbols: make(map[ast.DeclID]SymbolID),
	}
	if tree == nil {
		return result, nil
	}

	fileScope := table.FileRoot(tree.File, tree.Span)
	result.FileScope = fileScope

	resolver := NewResolver(table, fileScope, ResolverOptions{Reporter: opts.Reporter})
	installBuiltins(resolver, table)

	b := binder{
		tree:     tree,
		table:    table,
		resolver: resolver,
		reporter: opts.Reporter,
		result:   &result,
	}

	// Declarations are visible file-wide regardless of order, so symbols are
	// created before any value expression is bound.
	for _, declID := range tree.Roots {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		b.declare(declID)
	}
	for _, declID := range tree.Roots {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		b.bindValue(declID)
	}

	if opts.Validate {
		if err := table.Validate(); err != nil {
			// Structural damage in the arenas is a binder bug, not a user
			// condition.
			panic(fmt.Errorf("symbol table invariant violation: %w", err))
		}
	}
	return result, nil
}

func installBuiltins(resolver *Resolver, table *Table) {
	builtin := table.BuiltinRoot()
	scope := table.Scopes.Get(builtin)
	if scope == nil || len(scope.Symbols) > 0 {
		return // already installed for this table
	}
	resolver.declareRaw(builtin, table.Strings.Intern(BuiltinNamespace), source.Span{}, SymbolNamespace, SymbolFlagBuiltin)
	for _, name := range builtinFunctions {
		resolver.declareRaw(builtin, table.Strings.Intern(name), source.Span{}, SymbolFunction, SymbolFlagBuiltin)
	}
}

type binder struct {
	tree     *ast.Tree
	table    *Table
	resolver *Resolver
	reporter diag.Reporter
	result   *Result
	// owner is the symbol whose value expression is currently being bound;
	// resolved references land in its Deps.
	owner SymbolID
}

func (b *binder) declare(declID ast.DeclID) {
	decl := b.tree.Decl(declID)
	if decl == nil {
		return
	}

	kind := SymbolInvalid
	name := decl.Name
	span := decl.NameSpan
	switch decl.Kind {
	case ast.DeclParam:
		kind = SymbolParameter
	case ast.DeclVar:
		kind = SymbolVariable
	case ast.DeclResource:
		kind = SymbolResource
	case ast.DeclModule:
		kind = SymbolModule
	case ast.DeclOutput:
		kind = SymbolOutput
	case ast.DeclImport:
		if decl.Alias != source.NoStringID {
			kind = SymbolNamespaceAlias
			name = decl.Alias
		} else {
			kind = SymbolImport
			name = b.importStem(decl.Path)
		}
		if span == (source.Span{}) {
			span = decl.Span
		}
	default:
		return
	}

	id := b.resolver.Declare(name, span, kind, 0, declID, decl.Value)
	if id.IsValid() {
		b.result.DeclSymbols[declID] = id
	}
}

// importStem derives the default namespace name of an unaliased import:
// "lib/net.tern" -> "net".
func (b *binder) importStem(path source.StringID) source.StringID {
	p := b.table.Strings.MustLookup(path)
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.IndexByte(p, '.'); i >= 0 {
		p = p[:i]
	}
	return b.table.Strings.Intern(p)
}

func (b *binder) bindValue(declID ast.DeclID) {
	decl := b.tree.Decl(declID)
	if decl == nil || !decl.Value.IsValid() {
		return
	}
	b.owner = b.result.DeclSymbols[declID]
	b.bindExpr(decl.Value)
	b.owner = NoSymbolID
}

func (b *binder) bindExpr(exprID ast.ExprID) {
	expr := b.tree.Expr(exprID)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent:
		b.bindIdent(expr.Name, expr.Span)
	case ast.ExprArray:
		for _, el := range expr.Args {
			b.bindExpr(el)
		}
	case ast.ExprObject:
		for _, f := range expr.Fields {
			b.bindExpr(f.Value)
		}
	case ast.ExprMember:
		b.bindExpr(expr.Recv)
	case ast.ExprIndex:
		b.bindExpr(expr.Recv)
		b.bindExpr(expr.Index)
	case ast.ExprCall:
		b.bindIdent(expr.Name, expr.NameSpan)
		for _, arg := range expr.Args {
			b.bindExpr(arg)
		}
	case ast.ExprBinary:
		b.bindExpr(expr.Recv)
		b.bindExpr(expr.Index)
	case ast.ExprFor:
		// The iterable is bound outside the loop scope: the iteration
		// variable is not visible in it.
		b.bindExpr(expr.Recv)
		loop := b.resolver.Enter(ScopeLoop, expr.Span)
		b.resolver.Declare(expr.ForVar, expr.ForVarSpan, SymbolLoopVariable, 0, ast.NoDeclID, ast.NoExprID)
		b.bindExpr(expr.Index)
		b.resolver.Leave(loop)
	}
}

func (b *binder) bindIdent(name source.StringID, span source.Span) {
	id, ok := b.resolver.Lookup(name)
	if !ok {
		b.reportUnknownSymbol(name, span)
		// Error-placeholder so later references to the same name resolve
		// without repeating the diagnostic.
		id = b.resolver.declareRaw(b.resolver.CurrentScope(), name, span, SymbolVariable, SymbolFlagPlaceholder)
	}
	b.result.Refs = append(b.result.Refs, Ref{Span: span, Symbol: id})
	b.addDep(id)
}

func (b *binder) addDep(dep SymbolID) {
	if !b.owner.IsValid() || !dep.IsValid() {
		return
	}
	sym := b.table.Symbols.Get(dep)
	if sym == nil {
		return
	}
	// Placeholders have no value to cycle through; loop variables are local
	// to the declaration being bound; builtins are constants of the
	// environment. None of them belongs in the dependency graph.
	if sym.Flags&(SymbolFlagPlaceholder|SymbolFlagBuiltin) != 0 || sym.Kind == SymbolLoopVariable {
		return
	}
	owner := b.table.Symbols.Get(b.owner)
	if owner == nil {
		return
	}
	for _, existing := range owner.Deps {
		if existing == dep {
			return
		}
	}
	owner.Deps = append(owner.Deps, dep)
}

func (b *binder) reportUnknownSymbol(name source.StringID, span source.Span) {
	if b.reporter == nil {
		return
	}
	nameStr := b.table.Strings.MustLookup(name)
	diag.ReportError(b.reporter, diag.BindUnknownSymbol, span, fmt.Sprintf("unknown symbol %q", nameStr)).Emit()
}
