package aggregate

import (
	"fmt"

	"depgrade/facts"
)

// Diagnostics records conditions worth surfacing that are not computation
// failures. All slices are deterministically ordered.
type Diagnostics struct {
	// Cycles lists the members of every cyclic strongly connected component
	// found in the dependency graph, including single repositories with a
	// self-loop. Cycle members always receive a level; this is informational.
	Cycles [][]facts.RepoID

	// MissingDependencies lists dependency edges whose target id was not in
	// the snapshot. Each such edge contributed level 0 to the repository's
	// dependency floor.
	MissingDependencies []MissingDependency

	// IterationCapped lists cyclic components whose fixpoint loop hit the
	// iteration budget before settling. Their members keep the best values
	// reached; those may sit above the exact fixpoint but never above what
	// each member's own checks support. The default budget settles any
	// realistic cycle, so a capped component usually means the caller set a
	// very small MaxIterations against a very long cycle.
	IterationCapped [][]facts.RepoID
}

// MissingDependency is one dependency edge pointing outside the snapshot.
type MissingDependency struct {
	Repo       facts.RepoID
	Dependency facts.RepoID
}

func (d Diagnostics) clone() Diagnostics {
	out := Diagnostics{
		MissingDependencies: append([]MissingDependency(nil), d.MissingDependencies...),
	}
	for _, c := range d.Cycles {
		out.Cycles = append(out.Cycles, append([]facts.RepoID(nil), c...))
	}
	for _, c := range d.IterationCapped {
		out.IterationCapped = append(out.IterationCapped, append([]facts.RepoID(nil), c...))
	}
	return out
}

// MissingDependencyError reports snapshot inconsistency in strict mode. The
// Evaluate call that returns it still produced a complete Result.
type MissingDependencyError struct {
	Missing []MissingDependency
}

func (e *MissingDependencyError) Error() string {
	if len(e.Missing) == 1 {
		m := e.Missing[0]
		return fmt.Sprintf("repository %q depends on unknown repository %q", m.Repo, m.Dependency)
	}
	return fmt.Sprintf("%d dependency edges reference unknown repositories", len(e.Missing))
}
