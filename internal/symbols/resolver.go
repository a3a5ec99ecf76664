package symbols

import (
	"fmt"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
)

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to an existing scope tree. If root is valid it
// becomes the current scope; otherwise scope-sensitive operations are no-ops.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, span source.Span) ScopeID {
	parent := r.CurrentScope()
	scope := r.table.Scopes.New(kind, parent, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope, validating against the expected one. A
// mismatch is a binder bug, not a user condition.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Errorf("scope stack mismatch: leaving %d, expected %d", top, expected))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. A name already bound in
// the same scope yields a duplicate-symbol diagnostic referencing both
// declarations; the new symbol is still registered (flagged as duplicate) so
// later passes have something to resolve against. Shadowing an enclosing
// binding is legal and reported as a warning.
func (r *Resolver) Declare(name source.StringID, span source.Span, kind SymbolKind, flags SymbolFlags, decl ast.DeclID, value ast.ExprID) SymbolID {
	scopeID := r.CurrentScope()
	if !scopeID.IsValid() {
		return NoSymbolID
	}
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID
	}

	if existing := scope.NameIndex[name]; len(existing) > 0 {
		prev := r.table.Symbols.Get(existing[0])
		if prev != nil {
			r.reportDuplicateSymbol(name, span, prev.Span, prev.Flags)
		}
		flags |= SymbolFlagDuplicate
	} else if shadowed := r.findShadowed(scope.Parent, name); shadowed.IsValid() {
		r.reportShadowing(name, span, shadowed)
	}

	sym := Symbol{
		Name:  name,
		Kind:  kind,
		Scope: scopeID,
		Span:  span,
		Flags: flags,
		Decl:  decl,
		Value: value,
	}
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[name] = append(scope.NameIndex[name], id)
	return id
}

// declareRaw installs a symbol bypassing duplicate and shadow reporting.
// Used for builtins and error-placeholder symbols.
func (r *Resolver) declareRaw(scopeID ScopeID, name source.StringID, span source.Span, kind SymbolKind, flags SymbolFlags) SymbolID {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID
	}
	sym := Symbol{
		Name:  name,
		Kind:  kind,
		Scope: scopeID,
		Span:  span,
		Flags: flags,
	}
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[name] = append(scope.NameIndex[name], id)
	return id
}

// Lookup walks the scope chain from the current scope to the root and
// returns the nearest binding: first match wins, true shadowing.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if ids := scope.NameIndex[name]; len(ids) > 0 {
			// The first declaration owns the name; duplicates are
			// error-recovery symbols.
			return ids[0], true
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

func (r *Resolver) findShadowed(parent ScopeID, name source.StringID) SymbolID {
	for parent.IsValid() {
		scope := r.table.Scopes.Get(parent)
		if scope == nil {
			break
		}
		if ids := scope.NameIndex[name]; len(ids) > 0 {
			return ids[0]
		}
		parent = scope.Parent
	}
	return NoSymbolID
}

func (r *Resolver) reportDuplicateSymbol(name source.StringID, span, prevSpan source.Span, prevFlags SymbolFlags) {
	if r.reporter == nil {
		return
	}
	nameStr := r.table.Strings.MustLookup(name)
	msg := fmt.Sprintf("duplicate declaration of %q", nameStr)
	builder := diag.ReportError(r.reporter, diag.BindDuplicateSymbol, span, msg)
	noteMsg := "previous declaration here"
	if prevFlags&SymbolFlagBuiltin != 0 {
		noteMsg = "built-in declaration here"
	}
	if prevSpan != (source.Span{}) {
		builder.WithNote(prevSpan, noteMsg)
	}
	builder.Emit()
}

func (r *Resolver) reportShadowing(name source.StringID, span source.Span, shadowed SymbolID) {
	if r.reporter == nil {
		return
	}
	prev := r.table.Symbols.Get(shadowed)
	if prev == nil || prev.Flags&SymbolFlagBuiltin != 0 {
		return
	}
	nameStr := r.table.Strings.MustLookup(name)
	msg := fmt.Sprintf("declaration of %q shadows an enclosing declaration", nameStr)
	diag.ReportWarning(r.reporter, diag.BindShadowedSymbol, span, msg).
		WithNote(prev.Span, "shadowed declaration here").
		Emit()
}
