package symbols

import (
	"tern/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeBuiltin           // process-wide builtins, parent of every file scope
	ScopeFile              // root scope of one compilation unit
	ScopeLoop              // ephemeral scope of a for-expression body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBuiltin:
		return "builtin"
	case ScopeFile:
		return "file"
	case ScopeLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex maps
// a name to the symbols declared under it in declaration order; duplicates
// within one scope coexist here because binding keeps error-recovery
// symbols alive.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
