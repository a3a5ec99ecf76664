package ast

import (
	"tern/internal/source"
)

// DeclKind enumerates the declaration categories of the language.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclParam
	DeclVar
	DeclResource
	DeclModule
	DeclOutput
	DeclImport
)

func (k DeclKind) String() string {
	switch k {
	case DeclParam:
		return "param"
	case DeclVar:
		return "var"
	case DeclResource:
		return "resource"
	case DeclModule:
		return "module"
	case DeclOutput:
		return "output"
	case DeclImport:
		return "import"
	default:
		return "invalid"
	}
}

// TypeRef names a resource type: namespace/name@version.
type TypeRef struct {
	Namespace source.StringID
	Name      source.StringID
	Version   source.StringID
	Span      source.Span
}

// Decl is a single top-level declaration. Which fields are populated depends
// on Kind:
//
//   - DeclParam: Name, Type (optional declared type syntax), Value (optional default)
//   - DeclVar: Name, Value
//   - DeclResource: Name, Res, Value (object body or for-expression)
//   - DeclModule: Name, Path (module source), Value (argument object)
//   - DeclOutput: Name, Type, Value
//   - DeclImport: Path, Alias (optional), Name mirrors the alias or the path
type Decl struct {
	Kind     DeclKind
	Name     source.StringID
	NameSpan source.Span
	Span     source.Span
	Type     source.StringID // declared type syntax, NoStringID when absent
	TypeSpan source.Span
	Res      TypeRef
	Path     source.StringID
	Alias    source.StringID
	Value    ExprID
}
