// Package driver runs the analysis pipeline: bind, cycle detection, type
// checking, one unit at a time or in parallel across a program. Results are
// immutable snapshots; diagnostics come out sorted and byte-identical for
// identical input.
package driver

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"tern/internal/ast"
	"tern/internal/dag"
	"tern/internal/diag"
	"tern/internal/schema"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/symbols"
)

// DefaultMaxDiagnostics bounds the diagnostic bag of one unit when the caller
// does not set a limit.
const DefaultMaxDiagnostics = 256

// Unit is one compilation unit: a decoded tree plus the file set and string
// table it was decoded against. Units are self-contained so parallel analysis
// never shares mutable state.
type Unit struct {
	Name    string
	Tree    *ast.Tree
	Files   *source.FileSet
	Strings *source.Interner
}

// Options configure an analysis run.
type Options struct {
	Schemas        schema.Provider
	MaxDiagnostics int
	Jobs           int
	Publisher      Publisher
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// AnalyzeFile runs the synchronous pipeline over one unit. A cancelled
// context aborts between top-level declarations and returns the context
// error; nothing is published for an aborted unit.
func AnalyzeFile(ctx context.Context, unit Unit, opts Options) (*Snapshot, error) {
	bag := diag.NewBag(opts.maxDiagnostics())
	reporter := diag.BagReporter{Bag: bag}

	bound, err := symbols.Bind(ctx, unit.Tree, unit.Strings, symbols.BindOptions{
		Reporter: reporter,
	})
	if err != nil {
		return nil, err
	}
	dag.ReportCycles(&bound, reporter)

	checked, err := sema.Check(ctx, unit.Tree, sema.Options{
		Reporter: reporter,
		Symbols:  &bound,
		Schemas:  opts.Schemas,
	})
	if err != nil {
		return nil, err
	}

	bag.Sort()
	return &Snapshot{
		Unit:        unit.Name,
		Tree:        unit.Tree,
		Files:       unit.Files,
		Symbols:     &bound,
		Types:       &checked,
		Diagnostics: append([]diag.Diagnostic(nil), bag.Items()...),
	}, nil
}

// AnalyzeProgram analyzes every unit in parallel under a job limit, then runs
// the cross-unit import-cycle pass. The first pipeline error cancels the
// remaining units and nothing is published.
func AnalyzeProgram(ctx context.Context, units []Unit, opts Options) ([]*Snapshot, error) {
	snaps := make([]*Snapshot, len(units))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			snap, err := AnalyzeFile(gctx, unit, opts)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reportImportCycles(units, snaps)

	if opts.Publisher != nil {
		for _, snap := range snaps {
			opts.Publisher.Publish(snap.Unit, snap.Records())
		}
	}
	return snaps, nil
}

// reportImportCycles finds cycles in the unit-level import graph and appends
// one diagnostic per cycle to the first member's snapshot, anchored at its
// offending import declaration.
func reportImportCycles(units []Unit, snaps []*Snapshot) {
	index := make(map[string]int, len(units))
	for i, u := range units {
		index[u.Name] = i
	}

	g := dag.New(len(units))
	for i, u := range units {
		for _, imp := range unitImports(u.Tree, u.Strings) {
			if j, ok := index[imp.path]; ok {
				g.AddEdge(dag.NodeID(i), dag.NodeID(j))
			}
		}
	}

	for _, comp := range dag.Cycles(g) {
		first := int(comp[0])
		names := make([]string, 0, len(comp))
		for _, n := range comp {
			names = append(names, units[n].Name)
		}
		span := importAnchor(units[first], comp, units)
		d := diag.NewError(diag.CycleImport, span,
			"import cycle: "+strings.Join(names, " -> "))
		snap := snaps[first]
		snap.Diagnostics = append(snap.Diagnostics, d)
		sortDiagnostics(snap)
	}
}

type unitImport struct {
	path string
	span source.Span
}

func unitImports(tree *ast.Tree, strs *source.Interner) []unitImport {
	if tree == nil {
		return nil
	}
	var out []unitImport
	for _, declID := range tree.Roots {
		decl := tree.Decl(declID)
		if decl == nil || decl.Kind != ast.DeclImport {
			continue
		}
		out = append(out, unitImport{
			path: strs.MustLookup(decl.Path),
			span: decl.Span,
		})
	}
	return out
}

// importAnchor picks the span of the first import in the cycle's first unit
// that targets another cycle member, falling back to the unit's first import.
func importAnchor(first Unit, comp []dag.NodeID, units []Unit) source.Span {
	members := make(map[string]bool, len(comp))
	for _, n := range comp {
		members[units[n].Name] = true
	}
	imports := unitImports(first.Tree, first.Strings)
	for _, imp := range imports {
		if members[imp.path] {
			return imp.span
		}
	}
	if len(imports) > 0 {
		return imports[0].span
	}
	return source.Span{}
}

func sortDiagnostics(snap *Snapshot) {
	bag := diag.NewBag(len(snap.Diagnostics))
	for _, d := range snap.Diagnostics {
		bag.Add(d)
	}
	bag.Sort()
	snap.Diagnostics = append(snap.Diagnostics[:0], bag.Items()...)
}
