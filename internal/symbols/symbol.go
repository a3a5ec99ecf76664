package symbols

import (
	"tern/internal/ast"
	"tern/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolParameter
	SymbolVariable
	SymbolResource
	SymbolModule
	SymbolOutput
	SymbolImport
	SymbolNamespace
	SymbolFunction
	SymbolNamespaceAlias
	SymbolLoopVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolParameter:
		return "parameter"
	case SymbolVariable:
		return "variable"
	case SymbolResource:
		return "resource"
	case SymbolModule:
		return "module"
	case SymbolOutput:
		return "output"
	case SymbolImport:
		return "import"
	case SymbolNamespace:
		return "namespace"
	case SymbolFunction:
		return "function"
	case SymbolNamespaceAlias:
		return "namespace alias"
	case SymbolLoopVariable:
		return "loop variable"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	// SymbolFlagDuplicate marks the error-recovery symbol registered for a
	// name already bound in the same scope.
	SymbolFlagDuplicate SymbolFlags = 1 << iota
	// SymbolFlagPlaceholder marks the synthetic symbol bound to an
	// unresolved reference.
	SymbolFlagPlaceholder
	SymbolFlagBuiltin
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 3)
	if f&SymbolFlagDuplicate != 0 {
		labels = append(labels, "duplicate")
	}
	if f&SymbolFlagPlaceholder != 0 {
		labels = append(labels, "placeholder")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	return labels
}

// Symbol describes a named entity available in a scope. Identity fields are
// immutable after creation; only the dependency list grows while the
// declaring expression is being bound, and it is frozen when Bind returns.
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span // the declared name
	Flags SymbolFlags
	Decl  ast.DeclID // declaring node handle, NoDeclID for builtins
	Value ast.ExprID // value/default/body expression, if any
	// Deps is the descendants relation: every symbol the value expression
	// resolved to, in first-reference order. It feeds the dependency graph.
	Deps []SymbolID
}
