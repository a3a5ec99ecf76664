package ast

import (
	"tern/internal/source"
)

// ExprKind enumerates expression node categories.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprString
	ExprInt
	ExprBool
	ExprNull
	ExprIdent
	ExprArray
	ExprObject
	ExprMember
	ExprIndex
	ExprCall
	ExprFor
	ExprBinary
)

func (k ExprKind) String() string {
	switch k {
	case ExprString:
		return "string"
	case ExprInt:
		return "int"
	case ExprBool:
		return "bool"
	case ExprNull:
		return "null"
	case ExprIdent:
		return "ident"
	case ExprArray:
		return "array"
	case ExprObject:
		return "object"
	case ExprMember:
		return "member"
	case ExprIndex:
		return "index"
	case ExprCall:
		return "call"
	case ExprFor:
		return "for"
	case ExprBinary:
		return "binary"
	default:
		return "invalid"
	}
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	OpInvalid BinOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// ObjectField is a single key/value entry of an object literal.
type ObjectField struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

// Expr is one expression node. Field usage per Kind:
//
//   - ExprString: Str; ExprInt: Int; ExprBool: Bool
//   - ExprIdent: Name
//   - ExprArray: Args (elements)
//   - ExprObject: Fields
//   - ExprMember: Recv, Name, NameSpan
//   - ExprIndex: Recv, Index
//   - ExprCall: Name, NameSpan, Args
//   - ExprFor: ForVar, ForVarSpan, Recv (iterable), Index (body)
//   - ExprBinary: Op, Recv (lhs), Index (rhs)
type Expr struct {
	Kind       ExprKind
	Span       source.Span
	Str        source.StringID
	Int        int64
	Bool       bool
	Name       source.StringID
	NameSpan   source.Span
	Recv       ExprID
	Index      ExprID
	Args       []ExprID
	Fields     []ObjectField
	Op         BinOp
	ForVar     source.StringID
	ForVarSpan source.Span
}
