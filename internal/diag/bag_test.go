package diag

import (
	"strings"
	"testing"

	"tern/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	sp := source.Span{File: 1, Start: 0, End: 1}
	if !b.Add(NewError(BindUnknownSymbol, sp, "one")) {
		t.Fatalf("first add rejected")
	}
	if !b.Add(NewError(BindUnknownSymbol, sp, "two")) {
		t.Fatalf("second add rejected")
	}
	if b.Add(NewError(BindUnknownSymbol, sp, "three")) {
		t.Fatalf("add beyond limit accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagSortStable(t *testing.T) {
	b := NewBag(10)
	at := func(start uint32) source.Span { return source.Span{File: 1, Start: start, End: start + 1} }

	b.Add(NewError(TypeMismatch, at(20), "late"))
	b.Add(New(SevWarning, BindShadowedSymbol, at(5), "warning at 5"))
	b.Add(NewError(BindUnknownSymbol, at(5), "error at 5"))
	b.Add(NewError(BindUnknownSymbol, at(1), "first at 1"))
	b.Add(NewError(BindUnknownSymbol, at(1), "second at 1"))
	b.Sort()

	got := make([]string, 0, b.Len())
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	// Errors sort before warnings at the same span; identical keys keep
	// insertion order.
	want := []string{"first at 1", "second at 1", "error at 5", "warning at 5", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if got := TypeMismatch.String(); got != "TRN3001" {
		t.Fatalf("TypeMismatch = %q, want TRN3001", got)
	}
	if got := BindDuplicateSymbol.String(); got != "TRN1001" {
		t.Fatalf("BindDuplicateSymbol = %q, want TRN1001", got)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.tern", []byte("var a = b\n"))

	b := NewBag(4)
	b.Add(NewError(BindUnknownSymbol, source.Span{File: id, Start: 8, End: 9}, `unknown symbol "b"`).
		WithNote(source.Span{File: id, Start: 0, End: 3}, "while binding this declaration"))
	b.Sort()

	out := FormatDiagnostics(b.Items(), fs, true)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != `main.tern:1:9: ERROR TRN1002: unknown symbol "b"` {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "main.tern:1:1: NOTE:") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}
