package sema

import (
	"context"
	"strings"
	"testing"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/schema"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
)

type fixture struct {
	fs      *source.FileSet
	strs    *source.Interner
	tree    *ast.Tree
	content string
	file    source.FileID
}

func newFixture(t *testing.T, content string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("main.tern", []byte(content))
	f := &fixture{
		fs:      fs,
		strs:    source.NewInterner(),
		content: content,
		file:    file,
	}
	f.tree = ast.NewTree(file, source.Span{File: file, End: uint32(len(content))})
	return f
}

func (f *fixture) sp(t *testing.T, sub string, n int) source.Span {
	t.Helper()
	off := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(f.content[off+1:], sub)
		if next < 0 {
			t.Fatalf("occurrence %d of %q not found", n, sub)
		}
		off += 1 + next
	}
	return source.Span{File: f.file, Start: uint32(off), End: uint32(off + len(sub))}
}

func (f *fixture) intLit(t *testing.T, text string, n int, value int64) ast.ExprID {
	return f.tree.AddExpr(ast.Expr{Kind: ast.ExprInt, Span: f.sp(t, text, n), Int: value})
}

func (f *fixture) strLit(t *testing.T, text string, n int) ast.ExprID {
	return f.tree.AddExpr(ast.Expr{
		Kind: ast.ExprString,
		Span: f.sp(t, "'"+text+"'", n),
		Str:  f.strs.Intern(text),
	})
}

func (f *fixture) ident(t *testing.T, name string, n int) ast.ExprID {
	return f.tree.AddExpr(ast.Expr{Kind: ast.ExprIdent, Span: f.sp(t, name, n), Name: f.strs.Intern(name)})
}

func (f *fixture) check(t *testing.T, bag *diag.Bag, provider schema.Provider) (symbols.Result, Result) {
	t.Helper()
	bound, err := symbols.Bind(context.Background(), f.tree, f.strs, symbols.BindOptions{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	res, err := Check(context.Background(), f.tree, Options{
		Reporter: diag.BagReporter{Bag: bag},
		Symbols:  &bound,
		Schemas:  provider,
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return bound, res
}

func TestParamDefaultMismatch(t *testing.T) {
	f := newFixture(t, "param foo string = 123\n")
	f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclParam,
		Name:     f.strs.Intern("foo"),
		NameSpan: f.sp(t, "foo", 0),
		Span:     f.sp(t, "param foo string = 123", 0),
		Type:     f.strs.Intern("string"),
		TypeSpan: f.sp(t, "string", 0),
		Value:    f.intLit(t, "123", 0, 123),
	})

	bag := diag.NewBag(10)
	f.check(t, bag, nil)

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1:\n%s", bag.Len(), diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	d := bag.Items()[0]
	if d.Code != diag.TypeMismatch || d.Severity != diag.SevError {
		t.Fatalf("diag = %+v", d)
	}
	r := f.fs.Resolve(d.Primary)
	if r.Start.Line != 0 || r.Start.Column != 19 || r.End.Column != 22 {
		t.Fatalf("range = %+v, want line 0 columns 19-22", r)
	}
}

func TestParamAnnotationGoverns(t *testing.T) {
	f := newFixture(t, "param env 'dev'|'prod' = 'dev'\nvar copy = env\n")
	f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclParam,
		Name:     f.strs.Intern("env"),
		NameSpan: f.sp(t, "env", 0),
		Span:     f.sp(t, "env", 0),
		Type:     f.strs.Intern("'dev'|'prod'"),
		TypeSpan: f.sp(t, "'dev'|'prod'", 0),
		Value:    f.strLit(t, "dev", 1),
	})
	copyDecl := f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclVar,
		Name:     f.strs.Intern("copy"),
		NameSpan: f.sp(t, "copy", 0),
		Span:     f.sp(t, "copy", 0),
		Value:    f.ident(t, "env", 1),
	})

	bag := diag.NewBag(10)
	bound, res := f.check(t, bag, nil)

	if bag.Len() != 0 {
		t.Fatalf("diagnostics:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	got := res.SymbolTypes[bound.DeclSymbols[copyDecl]]
	if res.Types.Kind(got) != types.KindUnion {
		t.Fatalf("copy inferred as %s, want the declared union", res.Types.Format(got))
	}
}

func TestUnknownSymbolSuppressesMismatch(t *testing.T) {
	f := newFixture(t, "param port int = ghost\n")
	f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclParam,
		Name:     f.strs.Intern("port"),
		NameSpan: f.sp(t, "port", 0),
		Span:     f.sp(t, "port", 0),
		Type:     f.strs.Intern("int"),
		TypeSpan: f.sp(t, "int", 0),
		Value:    f.ident(t, "ghost", 0),
	})

	bag := diag.NewBag(10)
	f.check(t, bag, nil)

	// The unknown symbol is the only report; the error type is assignable
	// everywhere, so no mismatch follows.
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1:\n%s", bag.Len(), diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	if bag.Items()[0].Code != diag.BindUnknownSymbol {
		t.Fatalf("code = %v", bag.Items()[0].Code)
	}
}

func TestCycleFallsBackToErrorType(t *testing.T) {
	f := newFixture(t, "var aa = bb\nvar bb = aa\n")
	aa := f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("aa"),
		NameSpan: f.sp(t, "aa", 0), Span: f.sp(t, "aa", 0),
		Value: f.ident(t, "bb", 0),
	})
	f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("bb"),
		NameSpan: f.sp(t, "bb", 1), Span: f.sp(t, "bb", 1),
		Value: f.ident(t, "aa", 1),
	})

	bag := diag.NewBag(10)
	bound, res := f.check(t, bag, nil)

	// The cycle pass owns the diagnostic; inference only refuses to recurse.
	if bag.Len() != 0 {
		t.Fatalf("checker must stay silent on cycles:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	got := res.SymbolTypes[bound.DeclSymbols[aa]]
	if res.Types.Kind(got) != types.KindError {
		t.Fatalf("aa inferred as %s, want the error type", res.Types.Format(got))
	}
}

func TestBuiltinCalls(t *testing.T) {
	f := newFixture(t, "var up = toUpper('dev')\nvar bad = length(1)\n")
	f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("up"),
		NameSpan: f.sp(t, "up", 0), Span: f.sp(t, "up", 0),
		Value: f.tree.AddExpr(ast.Expr{
			Kind:     ast.ExprCall,
			Span:     f.sp(t, "toUpper('dev')", 0),
			Name:     f.strs.Intern("toUpper"),
			NameSpan: f.sp(t, "toUpper", 0),
			Args:     []ast.ExprID{f.strLit(t, "dev", 0)},
		}),
	})
	bad := f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("bad"),
		NameSpan: f.sp(t, "bad", 0), Span: f.sp(t, "bad", 0),
		Value: f.tree.AddExpr(ast.Expr{
			Kind:     ast.ExprCall,
			Span:     f.sp(t, "length(1)", 0),
			Name:     f.strs.Intern("length"),
			NameSpan: f.sp(t, "length", 0),
			Args:     []ast.ExprID{f.intLit(t, "1", 0, 1)},
		}),
	})

	bag := diag.NewBag(10)
	bound, res := f.check(t, bag, nil)

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1:\n%s", bag.Len(), diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	if bag.Items()[0].Code != diag.TypeUnknownOverload {
		t.Fatalf("code = %v", bag.Items()[0].Code)
	}
	if got := res.SymbolTypes[bound.DeclSymbols[bad]]; res.Types.Kind(got) != types.KindError {
		t.Fatalf("bad inferred as %s, want the error type", res.Types.Format(got))
	}
}

func testProvider(t *testing.T) schema.Provider {
	t.Helper()
	reg, err := schema.NewRegistry([]schema.ResourceSchema{{
		Namespace:  "net",
		Type:       "loadBalancer",
		APIVersion: "2024-01-01",
		Properties: []schema.Property{
			{Name: "name", Type: "string", Required: true},
			{Name: "port", Type: "int"},
			{Name: "fqdn", Type: "string", ReadOnly: true},
		},
	}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func (f *fixture) lbDecl(t *testing.T, fields []ast.ObjectField, bodySub string) ast.DeclID {
	return f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclResource,
		Name:     f.strs.Intern("lb"),
		NameSpan: f.sp(t, "lb", 0),
		Span:     f.sp(t, "lb", 0),
		Res: ast.TypeRef{
			Namespace: f.strs.Intern("net"),
			Name:      f.strs.Intern("loadBalancer"),
			Version:   f.strs.Intern("2024-01-01"),
			Span:      f.sp(t, "net/loadBalancer@2024-01-01", 0),
		},
		Value: f.tree.AddExpr(ast.Expr{
			Kind:   ast.ExprObject,
			Span:   f.sp(t, bodySub, 0),
			Fields: fields,
		}),
	})
}

func TestResourceBodyChecks(t *testing.T) {
	content := "resource lb 'net/loadBalancer@2024-01-01' = { port: 'x', fqdn: 'a', extra: 1 }\n"
	f := newFixture(t, content)
	fields := []ast.ObjectField{
		{Name: f.strs.Intern("port"), NameSpan: f.sp(t, "port", 0), Value: f.strLit(t, "x", 0)},
		{Name: f.strs.Intern("fqdn"), NameSpan: f.sp(t, "fqdn", 0), Value: f.strLit(t, "a", 0)},
		{Name: f.strs.Intern("extra"), NameSpan: f.sp(t, "extra", 0), Value: f.intLit(t, "1", 2, 1)},
	}
	f.lbDecl(t, fields, "{ port: 'x', fqdn: 'a', extra: 1 }")

	bag := diag.NewBag(10)
	f.check(t, bag, testProvider(t))
	bag.Sort()

	want := []diag.Code{
		diag.TypeMismatch,         // port: 'x'
		diag.TypeReadOnlyProperty, // fqdn
		diag.TypeUnknownProperty,  // extra
		diag.TypeMissingProperty,  // name (anchored at the body span)
	}
	if bag.Len() != len(want) {
		t.Fatalf("diagnostics = %d, want %d:\n%s", bag.Len(), len(want), diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	got := make(map[diag.Code]int)
	for _, d := range bag.Items() {
		got[d.Code]++
	}
	for _, code := range want {
		if got[code] != 1 {
			t.Fatalf("missing %v in:\n%s", code, diag.FormatDiagnostics(bag.Items(), f.fs, true))
		}
	}
}

func TestUnknownResourceType(t *testing.T) {
	content := "resource lb 'net/loadBalancer@2024-01-01' = { }\n"
	f := newFixture(t, content)
	decl := f.lbDecl(t, nil, "{ }")

	bag := diag.NewBag(10)
	bound, res := f.check(t, bag, nil) // no provider: every lookup misses

	if bag.Len() != 1 || bag.Items()[0].Code != diag.TypeUnknownResource {
		t.Fatalf("diagnostics:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	if got := res.SymbolTypes[bound.DeclSymbols[decl]]; res.Types.Kind(got) != types.KindError {
		t.Fatalf("lb inferred as %s, want the error type", res.Types.Format(got))
	}
}

func TestForExpressionTyping(t *testing.T) {
	content := "var items = [1, 2]\nvar doubled = [for it in items: it + it]\n"
	f := newFixture(t, content)

	f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("items"),
		NameSpan: f.sp(t, "items", 0), Span: f.sp(t, "items", 0),
		Value: f.tree.AddExpr(ast.Expr{
			Kind: ast.ExprArray,
			Span: f.sp(t, "[1, 2]", 0),
			Args: []ast.ExprID{f.intLit(t, "1", 0, 1), f.intLit(t, "2", 0, 2)},
		}),
	})
	body := f.tree.AddExpr(ast.Expr{
		Kind: ast.ExprBinary,
		Op:   ast.OpAdd,
		Span: f.sp(t, "it + it", 0),
		Recv: f.ident(t, "it", 3),
		Index: f.tree.AddExpr(ast.Expr{
			Kind: ast.ExprIdent, Span: f.sp(t, "it", 4), Name: f.strs.Intern("it"),
		}),
	})
	doubled := f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("doubled"),
		NameSpan: f.sp(t, "doubled", 0), Span: f.sp(t, "doubled", 0),
		Value: f.tree.AddExpr(ast.Expr{
			Kind:       ast.ExprFor,
			Span:       f.sp(t, "[for it in items: it + it]", 0),
			ForVar:     f.strs.Intern("it"),
			ForVarSpan: f.sp(t, "it", 1),
			Recv:       f.ident(t, "items", 1),
			Index:      body,
		}),
	})

	bag := diag.NewBag(10)
	bound, res := f.check(t, bag, nil)

	if bag.Len() != 0 {
		t.Fatalf("diagnostics:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	got := res.SymbolTypes[bound.DeclSymbols[doubled]]
	d := res.Types.Get(got)
	if d.Kind != types.KindArray || res.Types.Kind(d.Elem) != types.KindInt {
		t.Fatalf("doubled inferred as %s, want int[]", res.Types.Format(got))
	}
}

func TestNotIterable(t *testing.T) {
	content := "var bad = [for it in 1: it]\n"
	f := newFixture(t, content)
	f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("bad"),
		NameSpan: f.sp(t, "bad", 0), Span: f.sp(t, "bad", 0),
		Value: f.tree.AddExpr(ast.Expr{
			Kind:       ast.ExprFor,
			Span:       f.sp(t, "[for it in 1: it]", 0),
			ForVar:     f.strs.Intern("it"),
			ForVarSpan: f.sp(t, "it", 0),
			Recv:       f.intLit(t, "1", 0, 1),
			Index:      f.ident(t, "it", 1),
		}),
	})

	bag := diag.NewBag(10)
	f.check(t, bag, nil)

	if bag.Len() != 1 || bag.Items()[0].Code != diag.TypeNotIterable {
		t.Fatalf("diagnostics:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
}

func TestCheckCancellation(t *testing.T) {
	f := newFixture(t, "var vv = 1\n")
	f.tree.AddRoot(ast.Decl{
		Kind: ast.DeclVar, Name: f.strs.Intern("vv"),
		NameSpan: f.sp(t, "vv", 0), Span: f.sp(t, "vv", 0),
		Value: f.intLit(t, "1", 0, 1),
	})
	bound, err := symbols.Bind(context.Background(), f.tree, f.strs, symbols.BindOptions{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Check(ctx, f.tree, Options{Symbols: &bound}); err == nil {
		t.Fatalf("cancelled check must return the context error")
	}
}
