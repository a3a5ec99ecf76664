package driver

import (
	"sync"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/symbols"
)

// Snapshot is the immutable result of one analysis pass over one unit.
// Editor queries run against a snapshot while the next pass computes its
// replacement.
type Snapshot struct {
	Unit        string
	Tree        *ast.Tree
	Files       *source.FileSet
	Symbols     *symbols.Result
	Types       *sema.Result
	Diagnostics []diag.Diagnostic
}

// Record is one resolved diagnostic in publishable form: positions instead of
// byte offsets, path instead of file ID.
type Record struct {
	Severity diag.Severity
	Code     diag.Code
	Path     string
	Range    source.Range
	Message  string
}

// Records resolves the snapshot's diagnostics against its file set.
func (s *Snapshot) Records() []Record {
	out := make([]Record, 0, len(s.Diagnostics))
	for _, d := range s.Diagnostics {
		path := ""
		if f := s.Files.Get(d.Primary.File); f != nil {
			path = f.Path
		}
		out = append(out, Record{
			Severity: d.Severity,
			Code:     d.Code,
			Path:     path,
			Range:    s.Files.Resolve(d.Primary),
			Message:  d.Message,
		})
	}
	return out
}

// HasErrors reports whether any diagnostic is an error.
func (s *Snapshot) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Publisher is the opaque sink analysis results are pushed to. Implementations
// decide the transport; the driver only guarantees a completed, sorted pass
// per call.
type Publisher interface {
	Publish(unit string, records []Record)
}

// Store holds the latest snapshot per unit. Replace swaps atomically with
// respect to Get: readers see either the old complete snapshot or the new
// one, never a partial state.
type Store struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{snaps: make(map[string]*Snapshot)}
}

// Replace installs the snapshot as the current one for its unit.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	s.snaps[snap.Unit] = snap
	s.mu.Unlock()
}

// Get returns the current snapshot for a unit, or nil.
func (s *Store) Get(unit string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snaps[unit]
}

// Units returns the names of all stored units.
func (s *Store) Units() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.snaps))
	for name := range s.snaps {
		out = append(out, name)
	}
	return out
}
