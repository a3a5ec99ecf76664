package symbols

import (
	"tern/internal/source"
)

// Editor-facing queries over a completed bind result. They back hover,
// goto-definition and completion, which live outside the core.

// SymbolAt returns the symbol under the given byte offset: a declared name
// or a resolved reference. NoSymbolID when nothing is there.
func (r *Result) SymbolAt(offset uint32) SymbolID {
	for _, ref := range r.Refs {
		if ref.Span.Contains(offset) {
			return ref.Symbol
		}
	}
	for _, id := range r.DeclSymbols {
		sym := r.Table.Symbols.Get(id)
		if sym != nil && sym.Span.Contains(offset) {
			return id
		}
	}
	return NoSymbolID
}

// DeclarationSpan returns the span of the symbol's declared name.
func (r *Result) DeclarationSpan(id SymbolID) source.Span {
	sym := r.Table.Symbols.Get(id)
	if sym == nil {
		return source.Span{}
	}
	return sym.Span
}

// SymbolsInScopeAt returns every symbol visible at the given offset, from
// the innermost scope outward; within one scope, declaration order. This is
// the completion order.
func (r *Result) SymbolsInScopeAt(offset uint32) []SymbolID {
	scopeID := r.innermostScopeAt(offset)
	var out []SymbolID
	for scopeID.IsValid() {
		scope := r.Table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		out = append(out, scope.Symbols...)
		scopeID = scope.Parent
	}
	return out
}

func (r *Result) innermostScopeAt(offset uint32) ScopeID {
	best := r.FileScope
	for {
		scope := r.Table.Scopes.Get(best)
		if scope == nil {
			return best
		}
		next := NoScopeID
		for _, child := range scope.Children {
			cs := r.Table.Scopes.Get(child)
			if cs != nil && cs.Span.Contains(offset) {
				next = child
				break
			}
		}
		if !next.IsValid() {
			return best
		}
		best = next
	}
}
