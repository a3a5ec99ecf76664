package dag

import (
	"fmt"
	"strings"

	"tern/internal/diag"
	"tern/internal/symbols"
)

// FromBind assembles the dependency graph of one bound unit. Node i
// corresponds to SymbolID i+1, so node order is declaration order (the
// binder allocates top-level symbols while walking roots in source order).
func FromBind(res *symbols.Result) *Graph {
	g := New(res.Table.Symbols.Len())
	for i := 1; i <= res.Table.Symbols.Len(); i++ {
		id := symbols.SymbolID(i) // #nosec G115 -- bounded by arena length
		sym := res.Table.Symbols.Get(id)
		if sym == nil {
			continue
		}
		from := node(i - 1)
		for _, dep := range sym.Deps {
			g.AddEdge(from, node(int(dep)-1))
		}
	}
	return g
}

// ReportCycles finds every value-level dependency cycle in the bound unit
// and emits exactly one diagnostic per cycle, naming all members in
// declaration order and anchored at the first-declared member. A symbol
// reported in one cycle is never re-reported as a rotation of the same
// cycle: Tarjan components partition the graph.
func ReportCycles(res *symbols.Result, reporter diag.Reporter) {
	g := FromBind(res)
	for _, comp := range Cycles(g) {
		reportCycle(res, reporter, comp)
	}
}

func reportCycle(res *symbols.Result, reporter diag.Reporter, comp []NodeID) {
	if reporter == nil {
		return
	}
	first := symbols.SymbolID(comp[0] + 1)
	anchor := res.Table.Symbols.Get(first)
	if anchor == nil {
		return
	}

	if len(comp) == 1 {
		msg := fmt.Sprintf("%q refers to itself", res.Table.Name(first))
		diag.ReportError(reporter, diag.CycleSelfReference, anchor.Span, msg).Emit()
		return
	}

	names := make([]string, len(comp))
	for i, n := range comp {
		names[i] = res.Table.Name(symbols.SymbolID(n + 1))
	}
	msg := fmt.Sprintf("dependency cycle: %s", strings.Join(names, " -> "))
	builder := diag.ReportError(reporter, diag.CycleDetected, anchor.Span, msg)
	for _, n := range comp[1:] {
		member := res.Table.Symbols.Get(symbols.SymbolID(n + 1))
		if member != nil {
			builder.WithNote(member.Span, "cycle member declared here")
		}
	}
	builder.Emit()
}
