package graph

import (
	"reflect"
	"testing"

	"depgrade/facts"
)

func ids(ss ...string) []facts.RepoID {
	out := make([]facts.RepoID, len(ss))
	for i, s := range ss {
		out[i] = facts.RepoID(s)
	}
	return out
}

func edgeMap(pairs map[string][]string) map[facts.RepoID][]facts.RepoID {
	out := make(map[facts.RepoID][]facts.RepoID, len(pairs))
	for from, tos := range pairs {
		out[facts.RepoID(from)] = ids(tos...)
	}
	return out
}

func TestStronglyConnected(t *testing.T) {
	tests := []struct {
		name  string
		nodes []facts.RepoID
		edges map[facts.RepoID][]facts.RepoID
		// want lists components as sorted member sets in expected return
		// order where the order is forced; nil order means only membership
		// is checked.
		want       [][]facts.RepoID
		wantCyclic map[string]bool
	}{
		{
			name:  "chain is dependencies first",
			nodes: ids("a", "b", "c"),
			edges: edgeMap(map[string][]string{"a": {"b"}, "b": {"c"}}),
			want: [][]facts.RepoID{
				ids("c"), ids("b"), ids("a"),
			},
			wantCyclic: map[string]bool{"a": false, "b": false, "c": false},
		},
		{
			name:  "mutual pair collapses",
			nodes: ids("d", "e"),
			edges: edgeMap(map[string][]string{"d": {"e"}, "e": {"d"}}),
			want: [][]facts.RepoID{
				ids("d", "e"),
			},
			wantCyclic: map[string]bool{"d": true},
		},
		{
			name:  "self loop is cyclic",
			nodes: ids("s"),
			edges: edgeMap(map[string][]string{"s": {"s"}}),
			want: [][]facts.RepoID{
				ids("s"),
			},
			wantCyclic: map[string]bool{"s": true},
		},
		{
			name:  "cycle with tail",
			nodes: ids("a", "b", "c", "d"),
			edges: edgeMap(map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"b", "d"}}),
			want: [][]facts.RepoID{
				ids("d"), ids("b", "c"), ids("a"),
			},
			wantCyclic: map[string]bool{"a": false, "b": true, "d": false},
		},
		{
			name:  "disconnected components",
			nodes: ids("a", "b", "x", "y"),
			edges: edgeMap(map[string][]string{"a": {"b"}, "x": {"y"}}),
			want: [][]facts.RepoID{
				ids("b"), ids("a"), ids("y"), ids("x"),
			},
			wantCyclic: map[string]bool{"a": false, "x": false},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			comps := StronglyConnected(tc.nodes, tc.edges)

			got := make([][]facts.RepoID, 0, len(comps))
			for _, c := range comps {
				got = append(got, c.Members)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("StronglyConnected() members = %v, want %v", got, tc.want)
			}

			for _, c := range comps {
				for _, m := range c.Members {
					want, ok := tc.wantCyclic[string(m)]
					if !ok {
						continue
					}
					if c.Cyclic != want {
						t.Errorf("component of %s: Cyclic = %v, want %v", m, c.Cyclic, want)
					}
				}
			}
		})
	}
}

func TestStronglyConnectedDependenciesFirst(t *testing.T) {
	// Whatever the component order, every edge must point at an
	// earlier-emitted component.
	nodes := ids("a", "b", "c", "d", "e", "f")
	edges := edgeMap(map[string][]string{
		"a": {"b", "c"},
		"b": {"d"},
		"c": {"d", "e"},
		"d": {"f"},
		"e": {"f", "c"}, // c<->e cycle
	})

	comps := StronglyConnected(nodes, edges)
	pos := make(map[facts.RepoID]int)
	for i, c := range comps {
		for _, m := range c.Members {
			pos[m] = i
		}
	}
	for from, tos := range edges {
		for _, to := range tos {
			if pos[to] > pos[from] {
				t.Errorf("edge %s->%s points at a later component (%d > %d)", from, to, pos[to], pos[from])
			}
		}
	}
}

func TestLayers(t *testing.T) {
	nodes := ids("a", "b", "c", "x", "y")
	edges := edgeMap(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"x": {"y"},
	})

	comps := StronglyConnected(nodes, edges)
	layers := Layers(comps, edges)

	depthOf := func(id facts.RepoID) int {
		for d, layer := range layers {
			for _, ci := range layer {
				for _, m := range comps[ci].Members {
					if m == id {
						return d
					}
				}
			}
		}
		t.Fatalf("node %s not found in any layer", id)
		return -1
	}

	wantDepths := map[string]int{"c": 0, "y": 0, "b": 1, "x": 1, "a": 2}
	for id, want := range wantDepths {
		if got := depthOf(facts.RepoID(id)); got != want {
			t.Errorf("depth(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestLayersEmpty(t *testing.T) {
	if got := Layers(nil, nil); got != nil {
		t.Fatalf("Layers(nil) = %v, want nil", got)
	}
}
