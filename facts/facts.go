// Package facts holds the read-only snapshot of repository data the
// aggregation engine consumes: repository identities, passed-check facts, and
// dependency edges.
//
// The snapshot is populated by external collaborators (check execution and
// dependency ingestion) before aggregation runs. The engine never mutates it,
// and a snapshot must not change while a run is in flight; concurrent
// mutation is a precondition violation with undefined behavior, not a guarded
// condition.
package facts

import (
	"sort"

	"depgrade/levels"
)

// RepoID is an opaque, stable repository identifier. The engine does not
// interpret or normalize it; identity resolution belongs to ingestion.
type RepoID string

// Repository is a graph node.
type Repository struct {
	ID   RepoID
	Name string
}

// Store is the snapshot contract the aggregator reads. Implementations must
// return consistent answers for the duration of one aggregation run.
//
// Accessors for an unknown RepoID return empty results; passing ids that were
// never ingested is a caller error, not a recoverable condition.
type Store interface {
	// AllRepositories lists every known repository, ordered by ID.
	AllRepositories() []Repository

	// PassedChecks lists the checks the repository passed, ordered by name.
	// Absence of a check means not passed.
	PassedChecks(id RepoID) []levels.CheckName

	// Dependencies lists the repository's direct dependencies, ordered by ID.
	// The ids are as ingested and may reference repositories the store does
	// not know about.
	Dependencies(id RepoID) []RepoID
}

// Snapshot is the standard immutable Store implementation, built via Builder.
type Snapshot struct {
	repos  map[RepoID]Repository
	order  []RepoID
	passed map[RepoID]map[levels.CheckName]struct{}
	deps   map[RepoID]map[RepoID]struct{}
}

var _ Store = (*Snapshot)(nil)

// AllRepositories implements Store.
func (s *Snapshot) AllRepositories() []Repository {
	out := make([]Repository, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.repos[id])
	}
	return out
}

// PassedChecks implements Store.
func (s *Snapshot) PassedChecks(id RepoID) []levels.CheckName {
	set := s.passed[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]levels.CheckName, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dependencies implements Store.
func (s *Snapshot) Dependencies(id RepoID) []RepoID {
	set := s.deps[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]RepoID, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether the snapshot knows the repository.
func (s *Snapshot) Contains(id RepoID) bool {
	_, ok := s.repos[id]
	return ok
}
