// Package graph provides the strongly-connected-component machinery the
// aggregator uses to evaluate a dependency graph in dependency order while
// containing cycles.
package graph

import (
	"sort"

	"depgrade/facts"
)

// Component is one strongly connected component of the dependency graph.
type Component struct {
	// Members, sorted by id.
	Members []facts.RepoID

	// Cyclic is true when the component contains a cycle: more than one
	// member, or a single member with a self-loop.
	Cyclic bool
}

// StronglyConnected computes the SCCs of the directed graph given by nodes
// and edges (edges[n] lists the nodes n points at). Every edge target must
// itself appear in nodes; callers filter dangling references first.
//
// Components are returned dependencies-first: every edge leaving a component
// points into a component at a smaller index. Evaluating components in return
// order therefore visits each node only after all nodes it depends on,
// cycles excepted. The order is deterministic for a fixed nodes slice.
func StronglyConnected(nodes []facts.RepoID, edges map[facts.RepoID][]facts.RepoID) []Component {
	index := make(map[facts.RepoID]int, len(nodes))
	lowlink := make(map[facts.RepoID]int, len(nodes))
	onStack := make(map[facts.RepoID]bool, len(nodes))
	var stack []facts.RepoID
	next := 0

	var comps []Component

	// Tarjan, iterative. The frame stack replaces recursion so adversarially
	// deep dependency chains cannot overflow the goroutine stack.
	type frame struct {
		node facts.RepoID
		edge int
	}

	visit := func(root facts.RepoID) {
		frames := []frame{{node: root}}
		index[root] = next
		lowlink[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.edge < len(edges[f.node]) {
				w := edges[f.node][f.edge]
				f.edge++
				if _, seen := index[w]; !seen {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, frame{node: w})
				} else if onStack[w] && index[w] < lowlink[f.node] {
					lowlink[f.node] = index[w]
				}
				continue
			}

			n := f.node
			if lowlink[n] == index[n] {
				var members []facts.RepoID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					members = append(members, w)
					if w == n {
						break
					}
				}
				sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
				comps = append(comps, Component{
					Members: members,
					Cyclic:  len(members) > 1 || hasSelfLoop(n, edges),
				})
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				p := &frames[len(frames)-1]
				if lowlink[n] < lowlink[p.node] {
					lowlink[p.node] = lowlink[n]
				}
			}
		}
	}

	for _, n := range nodes {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}
	return comps
}

func hasSelfLoop(n facts.RepoID, edges map[facts.RepoID][]facts.RepoID) bool {
	for _, w := range edges[n] {
		if w == n {
			return true
		}
	}
	return false
}

// Layers groups component indices by topological depth in the condensation:
// layer 0 holds components with no outgoing edges, and each later layer only
// depends on earlier ones. Components sharing a layer are mutually
// independent once every earlier layer is settled, so they may be evaluated
// in parallel.
//
// comps must be in StronglyConnected return order.
func Layers(comps []Component, edges map[facts.RepoID][]facts.RepoID) [][]int {
	compOf := make(map[facts.RepoID]int)
	for i, c := range comps {
		for _, m := range c.Members {
			compOf[m] = i
		}
	}

	depth := make([]int, len(comps))
	maxDepth := 0
	for i, c := range comps {
		d := 0
		for _, m := range c.Members {
			for _, w := range edges[m] {
				j := compOf[w]
				if j == i {
					continue
				}
				if depth[j]+1 > d {
					d = depth[j] + 1
				}
			}
		}
		depth[i] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	if len(comps) == 0 {
		return nil
	}
	layers := make([][]int, maxDepth+1)
	for i := range comps {
		layers[depth[i]] = append(layers[depth[i]], i)
	}
	return layers
}
