package sema

import (
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

// exprType computes and memoizes the type of one expression node.
func (c *checker) exprType(id ast.ExprID) types.TypeID {
	if !id.IsValid() {
		return c.in.Error()
	}
	if t, ok := c.result.ExprTypes[id]; ok {
		return t
	}
	t := c.inferExpr(id)
	c.result.ExprTypes[id] = t
	return t
}

func (c *checker) inferExpr(id ast.ExprID) types.TypeID {
	expr := c.tree.Expr(id)
	if expr == nil {
		return c.in.Error()
	}
	switch expr.Kind {
	case ast.ExprString:
		return c.in.StringLit(expr.Str)
	case ast.ExprInt:
		return c.in.IntLit(expr.Int)
	case ast.ExprBool:
		return c.in.BoolLit(expr.Bool)
	case ast.ExprNull:
		return c.in.Null()
	case ast.ExprIdent:
		return c.identType(expr)
	case ast.ExprArray:
		return c.arrayType(expr)
	case ast.ExprObject:
		return c.objectType(expr)
	case ast.ExprMember:
		return c.memberType(expr)
	case ast.ExprIndex:
		return c.indexType(expr)
	case ast.ExprCall:
		return c.callType(expr)
	case ast.ExprFor:
		return c.forType(expr)
	case ast.ExprBinary:
		return c.binaryType(expr)
	default:
		return c.in.Error()
	}
}

func (c *checker) identType(expr *ast.Expr) types.TypeID {
	sym, ok := c.refs[expr.Span]
	if !ok {
		// The binder records a reference for every identifier; a miss means
		// the expression was never bound. Stay silent: the error type carries
		// the failure without a second report.
		return c.in.Error()
	}
	return c.symbolType(sym)
}

func (c *checker) arrayType(expr *ast.Expr) types.TypeID {
	if len(expr.Args) == 0 {
		return c.in.Array(c.in.Any())
	}
	members := make([]types.TypeID, 0, len(expr.Args))
	for _, el := range expr.Args {
		members = append(members, c.exprType(el))
	}
	if c.poisoned(members...) {
		return c.in.Error()
	}
	return c.in.Array(c.in.Union(members))
}

func (c *checker) objectType(expr *ast.Expr) types.TypeID {
	fields := make([]types.Field, 0, len(expr.Fields))
	poison := false
	for _, f := range expr.Fields {
		t := c.exprType(f.Value)
		if c.poisoned(t) {
			poison = true
		}
		fields = append(fields, types.Field{Name: f.Name, Type: t})
	}
	if poison {
		return c.in.Error()
	}
	return c.in.RegisterObject(types.ObjectInfo{Fields: fields})
}

func (c *checker) memberType(expr *ast.Expr) types.TypeID {
	recv := c.exprType(expr.Recv)
	if c.poisoned(recv) {
		return c.in.Error()
	}
	target := recv
	if res, ok := c.in.Resource(recv); ok {
		target = res.Body
	}
	switch c.in.Kind(target) {
	case types.KindAny:
		return c.in.Any()
	case types.KindObject:
		info, _ := c.in.Object(target)
		for _, f := range info.Fields {
			if f.Name == expr.Name {
				return f.Type
			}
		}
		if info.Open {
			return c.in.Any()
		}
		c.errorf(diag.TypeUnknownProperty, expr.NameSpan, "unknown property %q on %s",
			c.lookupName(expr.Name), c.in.Format(recv))
		return c.in.Error()
	default:
		c.errorf(diag.TypeUnknownProperty, expr.NameSpan, "%s has no properties",
			c.in.Format(recv))
		return c.in.Error()
	}
}

func (c *checker) indexType(expr *ast.Expr) types.TypeID {
	recv := c.exprType(expr.Recv)
	idx := c.exprType(expr.Index)
	if c.poisoned(recv, idx) {
		return c.in.Error()
	}
	if !c.in.AssignableTo(idx, c.in.Int()) {
		e := c.tree.Expr(expr.Index)
		c.errorf(diag.TypeMismatch, e.Span, "cannot assign %s to int", c.in.Format(idx))
		return c.in.Error()
	}
	switch c.in.Kind(recv) {
	case types.KindArray:
		return c.in.Get(recv).Elem
	case types.KindAny:
		return c.in.Any()
	default:
		c.errorf(diag.TypeNotIndexable, expr.Span, "%s is not indexable", c.in.Format(recv))
		return c.in.Error()
	}
}

func (c *checker) callType(expr *ast.Expr) types.TypeID {
	args := make([]types.TypeID, 0, len(expr.Args))
	for _, a := range expr.Args {
		args = append(args, c.exprType(a))
	}
	if c.poisoned(args...) {
		return c.in.Error()
	}
	if sym, ok := c.refs[expr.NameSpan]; ok {
		s := c.syms.Table.Symbols.Get(sym)
		if s != nil && s.Flags&symbols.SymbolFlagPlaceholder != 0 {
			return c.in.Error() // unknown callee was already reported
		}
	}
	name := c.lookupName(expr.Name)
	for _, ov := range c.overloads[name] {
		if ov.matches(c.in, args) {
			return ov.result
		}
	}
	c.errorf(diag.TypeUnknownOverload, expr.Span, "no overload of %s matches (%s)",
		name, c.formatArgs(args))
	return c.in.Error()
}

func (c *checker) forType(expr *ast.Expr) types.TypeID {
	iter := c.exprType(expr.Recv)
	if c.poisoned(iter) {
		c.typeLoopVar(expr.ForVarSpan, c.in.Error())
		c.exprType(expr.Index)
		return c.in.Error()
	}
	var elem types.TypeID
	switch c.in.Kind(iter) {
	case types.KindArray:
		elem = c.in.Get(iter).Elem
	case types.KindAny:
		elem = c.in.Any()
	default:
		e := c.tree.Expr(expr.Recv)
		c.errorf(diag.TypeNotIterable, e.Span, "%s is not iterable", c.in.Format(iter))
		elem = c.in.Error()
	}
	c.typeLoopVar(expr.ForVarSpan, elem)
	body := c.exprType(expr.Index)
	if c.poisoned(elem, body) {
		return c.in.Error()
	}
	return c.in.Array(body)
}

func (c *checker) typeLoopVar(span source.Span, t types.TypeID) {
	if sym, ok := c.loopVars[span]; ok {
		c.result.SymbolTypes[sym] = t
	}
}

func (c *checker) binaryType(expr *ast.Expr) types.TypeID {
	lhs := c.exprType(expr.Recv)
	rhs := c.exprType(expr.Index)
	if c.poisoned(lhs, rhs) {
		return c.in.Error()
	}
	isInt := func(t types.TypeID) bool { return c.in.AssignableTo(t, c.in.Int()) }
	isString := func(t types.TypeID) bool { return c.in.AssignableTo(t, c.in.StringType()) }
	isBool := func(t types.TypeID) bool { return c.in.AssignableTo(t, c.in.Bool()) }

	switch expr.Op {
	case ast.OpAdd:
		if isInt(lhs) && isInt(rhs) {
			return c.in.Int()
		}
		if isString(lhs) && isString(rhs) {
			return c.in.StringType()
		}
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if isInt(lhs) && isInt(rhs) {
			return c.in.Int()
		}
	case ast.OpEq, ast.OpNe:
		return c.in.Bool()
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if (isInt(lhs) && isInt(rhs)) || (isString(lhs) && isString(rhs)) {
			return c.in.Bool()
		}
	case ast.OpAnd, ast.OpOr:
		if isBool(lhs) && isBool(rhs) {
			return c.in.Bool()
		}
	}
	c.errorf(diag.TypeBadOperand, expr.Span, "operator %s is not defined for %s and %s",
		expr.Op, c.in.Format(lhs), c.in.Format(rhs))
	return c.in.Error()
}

func (c *checker) lookupName(id source.StringID) string {
	return c.syms.Table.Strings.MustLookup(id)
}

func (c *checker) formatArgs(args []types.TypeID) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, c.in.Format(a))
	}
	return strings.Join(parts, ", ")
}
