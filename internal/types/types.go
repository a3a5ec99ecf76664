package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the poisoned type substituted after an unresolved symbol
	// or a dependency cycle. It is assignable in both directions so that one
	// failure does not cascade into follow-up diagnostics.
	KindError
	KindAny
	KindNull
	KindBool
	KindInt
	KindString
	KindBoolLit
	KindIntLit
	KindStringLit
	KindArray
	KindObject
	KindUnion
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindAny:
		return "any"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBoolLit:
		return "bool literal"
	case KindIntLit:
		return "int literal"
	case KindStringLit:
		return "string literal"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	case KindResource:
		return "resource"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsLiteral reports whether the kind narrows a primitive to one value.
func (k Kind) IsLiteral() bool {
	return k == KindBoolLit || k == KindIntLit || k == KindStringLit
}

// LiteralBase returns the primitive a literal kind narrows.
func (k Kind) LiteralBase() Kind {
	switch k {
	case KindBoolLit:
		return KindBool
	case KindIntLit:
		return KindInt
	case KindStringLit:
		return KindString
	default:
		return KindInvalid
	}
}

// Type is a compact descriptor for any supported type. Payload indexes the
// interner's side table matching the Kind (literals, objects, unions,
// resources); Elem is the element type of arrays.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}
