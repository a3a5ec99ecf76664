package diag

import (
	"fmt"
)

// Code identifies a semantic condition. The numeric value is stable across
// releases: a code is never reused for a different condition.
type Code uint16

const (
	UnknownCode Code = 0

	// Binder (symbol table construction, name resolution)
	BindInfo            Code = 1000
	BindDuplicateSymbol Code = 1001
	BindUnknownSymbol   Code = 1002
	BindShadowedSymbol  Code = 1003
	BindDuplicateImport Code = 1004

	// Dependency graph
	CycleInfo          Code = 2000
	CycleDetected      Code = 2001
	CycleSelfReference Code = 2002
	CycleImport        Code = 2003

	// Type system
	TypeInfo             Code = 3000
	TypeMismatch         Code = 3001
	TypeUnknownOverload  Code = 3002
	TypeUnknownResource  Code = 3003
	TypeUnknownProperty  Code = 3004
	TypeMissingProperty  Code = 3005
	TypeReadOnlyProperty Code = 3006
	TypeNotIterable      Code = 3007
	TypeNotIndexable     Code = 3008
	TypeBadOperand       Code = 3009
	TypeBadTypeSyntax    Code = 3010
)

// String renders the stable external form of the code, e.g. "TRN3001".
func (c Code) String() string {
	return fmt.Sprintf("TRN%04d", uint16(c))
}
