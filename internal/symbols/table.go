package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Strings  *source.Interner
	fileRoot map[source.FileID]ScopeID
	builtin  ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:   NewScopes(scopeCap),
		Symbols:  NewSymbols(symCap),
		Strings:  strings,
		fileRoot: make(map[source.FileID]ScopeID),
	}
}

// BuiltinRoot returns (and creates if needed) the scope holding builtin
// symbols. It is the parent of every file scope, so user declarations shadow
// builtins instead of colliding with them.
func (t *Table) BuiltinRoot() ScopeID {
	if t.builtin.IsValid() {
		return t.builtin
	}
	t.builtin = t.Scopes.New(ScopeBuiltin, NoScopeID, source.Span{})
	return t.builtin
}

// FileRoot returns (and creates if needed) the root scope for the given file.
func (t *Table) FileRoot(file source.FileID, span source.Span) ScopeID {
	if scope, ok := t.fileRoot[file]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopeFile, t.BuiltinRoot(), span)
	t.fileRoot[file] = scope
	return scope
}

// Name resolves a symbol's name to its string form.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	return t.Strings.MustLookup(sym.Name)
}

// Validate checks arena invariants: scope parent/child links agree and every
// symbol is indexed by the scope it claims. A violation is a binder bug.
func (t *Table) Validate() error {
	for i := 1; i <= t.Scopes.Len(); i++ {
		id := ScopeID(i) // #nosec G115 -- bounded by arena length
		scope := t.Scopes.Get(id)
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			if parent == nil {
				return fmt.Errorf("scope %d: dangling parent %d", id, scope.Parent)
			}
			found := false
			for _, child := range parent.Children {
				if child == id {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("scope %d: missing from parent %d children", id, scope.Parent)
			}
		}
		for _, symID := range scope.Symbols {
			sym := t.Symbols.Get(symID)
			if sym == nil {
				return fmt.Errorf("scope %d: dangling symbol %d", id, symID)
			}
			if sym.Scope != id {
				return fmt.Errorf("symbol %d: claims scope %d but indexed in %d", symID, sym.Scope, id)
			}
		}
	}
	return nil
}
