package symbols

import (
	"context"
	"strings"
	"testing"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
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

// sp locates the n-th occurrence (0-based) of sub and returns its span.
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

func (f *fixture) ident(t *testing.T, name string, n int) ast.ExprID {
	return f.tree.AddExpr(ast.Expr{
		Kind: ast.ExprIdent,
		Span: f.sp(t, name, n),
		Name: f.strs.Intern(name),
	})
}

func (f *fixture) intLit(t *testing.T, text string, n int, value int64) ast.ExprID {
	return f.tree.AddExpr(ast.Expr{
		Kind: ast.ExprInt,
		Span: f.sp(t, text, n),
		Int:  value,
	})
}

func (f *fixture) varDecl(t *testing.T, name string, nameOcc int, value ast.ExprID) ast.DeclID {
	return f.tree.AddRoot(ast.Decl{
		Kind:     ast.DeclVar,
		Name:     f.strs.Intern(name),
		NameSpan: f.sp(t, name, nameOcc),
		Span:     f.sp(t, name, nameOcc),
		Value:    value,
	})
}

func (f *fixture) bind(t *testing.T, bag *diag.Bag) Result {
	t.Helper()
	res, err := Bind(context.Background(), f.tree, f.strs, BindOptions{
		Reporter: diag.BagReporter{Bag: bag},
		Validate: true,
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return res
}

func TestBindDuplicateStillRegisters(t *testing.T) {
	f := newFixture(t, "var dup = 1\nvar dup = 2\n")
	f.varDecl(t, "dup", 0, f.intLit(t, "1", 0, 1))
	f.varDecl(t, "dup", 1, f.intLit(t, "2", 0, 2))

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1:\n%s", bag.Len(), diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	d := bag.Items()[0]
	if d.Code != diag.BindDuplicateSymbol || d.Severity != diag.SevError {
		t.Fatalf("diag = %+v", d)
	}
	if d.Primary != f.sp(t, "dup", 1) {
		t.Fatalf("primary anchored at %v, want second declaration", d.Primary)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != f.sp(t, "dup", 0) {
		t.Fatalf("note must reference the first declaration, got %+v", d.Notes)
	}

	// Both symbols exist; the second carries the duplicate flag.
	if len(res.DeclSymbols) != 2 {
		t.Fatalf("decl symbols = %d, want 2", len(res.DeclSymbols))
	}
	second := res.DeclSymbols[f.tree.Roots[1]]
	if sym := res.Table.Symbols.Get(second); sym == nil || sym.Flags&SymbolFlagDuplicate == 0 {
		t.Fatalf("second symbol not flagged duplicate: %+v", res.Table.Symbols.Get(second))
	}
}

func TestBindUnknownSymbolOnceAndPlaceholder(t *testing.T) {
	f := newFixture(t, "var aa = ghost\nvar cc = ghost\n")
	f.varDecl(t, "aa", 0, f.ident(t, "ghost", 0))
	f.varDecl(t, "cc", 0, f.ident(t, "ghost", 1))

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want exactly one unknown-symbol report:\n%s",
			bag.Len(), diag.FormatDiagnostics(bag.Items(), f.fs, false))
	}
	if bag.Items()[0].Code != diag.BindUnknownSymbol {
		t.Fatalf("code = %v", bag.Items()[0].Code)
	}

	// Both references bind to the same placeholder.
	if len(res.Refs) != 2 {
		t.Fatalf("refs = %d, want 2", len(res.Refs))
	}
	if res.Refs[0].Symbol != res.Refs[1].Symbol {
		t.Fatalf("references bound to different symbols")
	}
	sym := res.Table.Symbols.Get(res.Refs[0].Symbol)
	if sym == nil || sym.Flags&SymbolFlagPlaceholder == 0 {
		t.Fatalf("expected placeholder symbol, got %+v", sym)
	}
}

func TestBindForwardReference(t *testing.T) {
	f := newFixture(t, "var early = late\nvar late = 1\n")
	f.varDecl(t, "early", 0, f.ident(t, "late", 0))
	f.varDecl(t, "late", 1, f.intLit(t, "1", 0, 1))

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	if bag.Len() != 0 {
		t.Fatalf("forward reference must resolve:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, false))
	}
	early := res.Table.Symbols.Get(res.DeclSymbols[f.tree.Roots[0]])
	late := res.DeclSymbols[f.tree.Roots[1]]
	if len(early.Deps) != 1 || early.Deps[0] != late {
		t.Fatalf("deps = %v, want [%v]", early.Deps, late)
	}
}

func TestBindLoopScopeShadowing(t *testing.T) {
	content := "var items = [1]\nvar item = 2\nvar copies = [for item in items: item]\n"
	f := newFixture(t, content)

	f.varDecl(t, "items", 0, f.tree.AddExpr(ast.Expr{
		Kind: ast.ExprArray,
		Span: f.sp(t, "[1]", 0),
		Args: []ast.ExprID{f.intLit(t, "1", 0, 1)},
	}))
	f.varDecl(t, "item", 1, f.intLit(t, "2", 0, 2)) // occurrence 1:0 is inside "items"

	iterable := f.ident(t, "items", 1)
	body := f.ident(t, "item", 4)
	forExpr := f.tree.AddExpr(ast.Expr{
		Kind:       ast.ExprFor,
		Span:       f.sp(t, "[for item in items: item]", 0),
		ForVar:     f.strs.Intern("item"),
		ForVarSpan: f.sp(t, "item", 2),
		Recv:       iterable,
		Index:      body,
	})
	f.varDecl(t, "copies", 0, forExpr)

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	// Shadowing the outer "item" is legal and surfaces as one warning.
	if bag.Len() != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatDiagnostics(bag.Items(), f.fs, true))
	}
	d := bag.Items()[0]
	if d.Code != diag.BindShadowedSymbol || d.Severity != diag.SevWarning {
		t.Fatalf("diag = %+v", d)
	}

	// The body reference resolves to the loop variable, not the outer var.
	var bodyRef *Ref
	bodySpan := f.sp(t, "item", 4)
	for i := range res.Refs {
		if res.Refs[i].Span == bodySpan {
			bodyRef = &res.Refs[i]
		}
	}
	if bodyRef == nil {
		t.Fatalf("body reference not recorded")
	}
	if sym := res.Table.Symbols.Get(bodyRef.Symbol); sym == nil || sym.Kind != SymbolLoopVariable {
		t.Fatalf("body resolved to %+v, want loop variable", res.Table.Symbols.Get(bodyRef.Symbol))
	}

	// The loop variable is not part of the dependency graph; only the
	// iterable is.
	copies := res.Table.Symbols.Get(res.DeclSymbols[f.tree.Roots[2]])
	items := res.DeclSymbols[f.tree.Roots[0]]
	if len(copies.Deps) != 1 || copies.Deps[0] != items {
		t.Fatalf("copies deps = %v, want [%v]", copies.Deps, items)
	}

	// Outside the loop the name resolves to the outer declaration.
	outer := res.DeclSymbols[f.tree.Roots[1]]
	outerScope := res.SymbolsInScopeAt(f.sp(t, "var item", 0).Start)
	for _, id := range outerScope {
		sym := res.Table.Symbols.Get(id)
		if sym != nil && sym.Kind == SymbolLoopVariable {
			t.Fatalf("loop variable visible outside its loop")
		}
	}
	_ = outer
}

func TestBindSelfReference(t *testing.T) {
	f := newFixture(t, "var loop = loop\n")
	f.varDecl(t, "loop", 0, f.ident(t, "loop", 1))

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	sym := res.Table.Symbols.Get(res.DeclSymbols[f.tree.Roots[0]])
	if len(sym.Deps) != 1 || sym.Deps[0] != res.DeclSymbols[f.tree.Roots[0]] {
		t.Fatalf("self reference must produce a self edge, deps = %v", sym.Deps)
	}
}

func TestBindDeterminism(t *testing.T) {
	build := func() (string, int) {
		f := newFixture(t, "var aa = ghost\nvar aa = 2\nvar bb = aa\n")
		f.varDecl(t, "aa", 0, f.ident(t, "ghost", 0))
		f.varDecl(t, "aa", 1, f.intLit(t, "2", 0, 2))
		f.varDecl(t, "bb", 0, f.ident(t, "aa", 2))
		bag := diag.NewBag(10)
		res := f.bind(t, bag)
		bag.Sort()
		return diag.FormatDiagnostics(bag.Items(), f.fs, true), res.Table.Symbols.Len()
	}
	out1, syms1 := build()
	out2, syms2 := build()
	if out1 != out2 {
		t.Fatalf("diagnostic streams differ:\n%s\n---\n%s", out1, out2)
	}
	if syms1 != syms2 {
		t.Fatalf("symbol counts differ: %d vs %d", syms1, syms2)
	}
}

func TestQueries(t *testing.T) {
	f := newFixture(t, "var base = 1\nvar other = base\n")
	f.varDecl(t, "base", 0, f.intLit(t, "1", 0, 1))
	f.varDecl(t, "other", 0, f.ident(t, "base", 1))

	bag := diag.NewBag(10)
	res := f.bind(t, bag)

	base := res.DeclSymbols[f.tree.Roots[0]]
	refSpan := f.sp(t, "base", 1)

	if got := res.SymbolAt(refSpan.Start); got != base {
		t.Fatalf("SymbolAt(ref) = %v, want %v", got, base)
	}
	if got := res.SymbolAt(f.sp(t, "base", 0).Start); got != base {
		t.Fatalf("SymbolAt(decl) = %v, want %v", got, base)
	}
	if got := res.DeclarationSpan(base); got != f.sp(t, "base", 0) {
		t.Fatalf("DeclarationSpan = %v", got)
	}

	visible := res.SymbolsInScopeAt(refSpan.Start)
	if len(visible) < 2 {
		t.Fatalf("expected file symbols plus builtins, got %d", len(visible))
	}
	// File-scope symbols come before builtins and keep declaration order.
	if visible[0] != base {
		t.Fatalf("first visible symbol = %v, want %v", visible[0], base)
	}
}
