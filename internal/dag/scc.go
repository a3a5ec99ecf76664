package dag

import (
	"slices"
	"sort"
)

// SCC computes strongly connected components with an iterative Tarjan pass.
// Recursion is replaced with an explicit frame stack so deep or wide graphs
// cannot exhaust the goroutine stack. Every node appears in exactly one
// component.
func SCC(g *Graph) [][]NodeID {
	n := g.Len()
	const unvisited = -1
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		counter int
		stack   []NodeID
		comps   [][]NodeID
	)

	type frame struct {
		v    NodeID
		edge int // next outgoing edge to examine
	}

	for start := 0; start < n; start++ {
		if index[start] != unvisited {
			continue
		}
		frames := []frame{{v: node(start)}}
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			v := f.v
			if f.edge == 0 {
				index[v] = counter
				low[v] = counter
				counter++
				stack = append(stack, v)
				onStack[v] = true
			}

			advanced := false
			for f.edge < len(g.Edges[v]) {
				w := g.Edges[v][f.edge]
				f.edge++
				if index[w] == unvisited {
					frames = append(frames, frame{v: w})
					advanced = true
					break
				}
				if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
			}
			if advanced {
				continue
			}

			// v is complete; maybe a component root.
			if low[v] == index[v] {
				var comp []NodeID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				comps = append(comps, comp)
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
		}
	}
	return comps
}

// Cycles returns only the components that actually contain a cycle: more
// than one member, or a single member with a self-edge. Members are sorted
// ascending (callers assign NodeIDs in declaration order, so this is
// declaration order) and cycles are ordered by their first member. A node
// belongs to at most one component, so a reported cycle is never a rotation
// of another.
func Cycles(g *Graph) [][]NodeID {
	var out [][]NodeID
	for _, comp := range SCC(g) {
		if len(comp) == 1 && !g.HasEdge(comp[0], comp[0]) {
			continue
		}
		slices.Sort(comp)
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
