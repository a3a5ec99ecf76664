// Package dag builds the dependency graph over bound symbols and finds
// every cycle in it. The same machinery serves value-level cycles inside a
// unit and import cycles across units; only the node mapping differs.
package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// NodeID indexes a node of a Graph.
type NodeID uint32

// Graph is a plain adjacency-list directed graph. Nodes are dense indices
// assigned by the caller; edges keep insertion order so traversal is
// deterministic.
type Graph struct {
	Edges [][]NodeID
}

// New creates a graph with n nodes and no edges.
func New(n int) *Graph {
	return &Graph{Edges: make([][]NodeID, n)}
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.Edges) }

// AddEdge records a from -> to dependency. Duplicate edges are dropped.
func (g *Graph) AddEdge(from, to NodeID) {
	if int(from) >= len(g.Edges) || int(to) >= len(g.Edges) {
		panic(fmt.Errorf("dag: edge %d->%d outside graph of %d nodes", from, to, len(g.Edges)))
	}
	if slices.Contains(g.Edges[from], to) {
		return
	}
	g.Edges[from] = append(g.Edges[from], to)
}

// HasEdge reports whether the exact edge exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	if int(from) >= len(g.Edges) {
		return false
	}
	return slices.Contains(g.Edges[from], to)
}

// node converts a dense index into a NodeID, guarding against overflow.
func node(i int) NodeID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("dag node id overflow: %w", err))
	}
	return NodeID(v)
}
