package sema

import (
	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/schema"
	"tern/internal/types"
)

// resourceType resolves a resource declaration against the schema provider
// and validates its body. A for-expression body yields an array of the
// resource type.
func (c *checker) resourceType(decl *ast.Decl) types.TypeID {
	ns := c.lookupName(decl.Res.Namespace)
	name := c.lookupName(decl.Res.Name)
	version := c.lookupName(decl.Res.Version)

	var found *schema.ResourceSchema
	if c.schemas != nil {
		found, _ = c.schemas.Lookup(ns, name, version)
	}
	if found == nil {
		c.errorf(diag.TypeUnknownResource, decl.Res.Span, "unknown resource type %s/%s@%s",
			ns, name, version)
		c.exprType(decl.Value)
		return c.in.Error()
	}
	shape := c.internSchema(found)

	body := c.tree.Expr(decl.Value)
	switch {
	case body == nil:
		c.errorf(diag.TypeMissingProperty, decl.Span, "resource %q has no body",
			c.lookupName(decl.Name))
		return c.in.Error()
	case body.Kind == ast.ExprObject:
		c.checkResourceBody(body, shape)
		c.result.ExprTypes[decl.Value] = shape.resource
		return shape.resource
	case body.Kind == ast.ExprFor:
		return c.resourceForBody(decl.Value, body, shape)
	default:
		c.exprType(decl.Value)
		c.errorf(diag.TypeMismatch, body.Span, "resource body must be an object")
		return shape.resource
	}
}

// resourceForBody handles `resource ... = [for x in xs: {...}]`: each
// iteration produces one resource instance, the declaration an array of them.
func (c *checker) resourceForBody(valueID ast.ExprID, body *ast.Expr, shape *schemaShape) types.TypeID {
	iter := c.exprType(body.Recv)
	elem := c.in.Any()
	switch c.in.Kind(iter) {
	case types.KindArray:
		elem = c.in.Get(iter).Elem
	case types.KindAny, types.KindError:
	default:
		rv := c.tree.Expr(body.Recv)
		c.errorf(diag.TypeNotIterable, rv.Span, "%s is not iterable", c.in.Format(iter))
		elem = c.in.Error()
	}
	c.typeLoopVar(body.ForVarSpan, elem)

	if inner := c.tree.Expr(body.Index); inner != nil && inner.Kind == ast.ExprObject {
		c.checkResourceBody(inner, shape)
		c.result.ExprTypes[body.Index] = shape.resource
	} else {
		c.exprType(body.Index)
	}
	out := c.in.Array(shape.resource)
	c.result.ExprTypes[valueID] = out
	return out
}

// schemaShape is the interned form of one provider schema.
type schemaShape struct {
	resource types.TypeID
	fields   []types.Field
}

// internSchema converts a provider schema into an interned resource type.
// Property syntax that fails to parse falls back to any: schema files are
// provider input, not user source, so no diagnostic is anchored there.
func (c *checker) internSchema(s *schema.ResourceSchema) *schemaShape {
	fields := make([]types.Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		pt, err := types.ParseSyntax(c.in, p.Type)
		if err != nil {
			pt = c.in.Any()
		}
		fields = append(fields, types.Field{
			Name:     c.syms.Table.Strings.Intern(p.Name),
			Type:     pt,
			Optional: !p.Required,
			ReadOnly: p.ReadOnly,
		})
	}
	bodyType := c.in.RegisterObject(types.ObjectInfo{Fields: fields})
	resType := c.in.RegisterResource(types.ResourceInfo{
		Namespace: c.syms.Table.Strings.Intern(s.Namespace),
		Name:      c.syms.Table.Strings.Intern(s.Type),
		Version:   c.syms.Table.Strings.Intern(s.APIVersion),
		Body:      bodyType,
	})
	return &schemaShape{resource: resType, fields: fields}
}

// checkResourceBody validates one object literal against the schema shape:
// unknown and read-only properties, missing required properties, and value
// assignability per property.
func (c *checker) checkResourceBody(body *ast.Expr, shape *schemaShape) {
	seen := make(map[string]bool, len(body.Fields))
	for _, f := range body.Fields {
		fieldName := c.lookupName(f.Name)
		seen[fieldName] = true

		var prop *types.Field
		for i := range shape.fields {
			if c.lookupName(shape.fields[i].Name) == fieldName {
				prop = &shape.fields[i]
				break
			}
		}
		valueType := c.exprType(f.Value)
		if prop == nil {
			c.errorf(diag.TypeUnknownProperty, f.NameSpan, "unknown property %q on %s",
				fieldName, c.in.Format(shape.resource))
			continue
		}
		if prop.ReadOnly {
			c.errorf(diag.TypeReadOnlyProperty, f.NameSpan, "property %q is read-only", fieldName)
			continue
		}
		if c.poisoned(valueType) {
			continue
		}
		if !c.in.AssignableTo(valueType, prop.Type) {
			e := c.tree.Expr(f.Value)
			c.errorf(diag.TypeMismatch, e.Span, "cannot assign %s to %s",
				c.in.Format(valueType), c.in.Format(prop.Type))
		}
	}
	for i := range shape.fields {
		p := &shape.fields[i]
		if p.Optional || p.ReadOnly {
			continue
		}
		fieldName := c.lookupName(p.Name)
		if !seen[fieldName] {
			c.errorf(diag.TypeMissingProperty, body.Span, "missing required property %q", fieldName)
		}
	}
}
