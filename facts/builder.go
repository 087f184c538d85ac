package facts

import (
	"sort"

	"depgrade/levels"
)

// Builder accumulates facts from the external suppliers and produces an
// immutable Snapshot. It is not safe for concurrent use; ingestion feeds it
// sequentially, then hands the Snapshot to the engine.
type Builder struct {
	repos  map[RepoID]Repository
	passed map[RepoID]map[levels.CheckName]struct{}
	deps   map[RepoID]map[RepoID]struct{}
}

func NewBuilder() *Builder {
	return &Builder{
		repos:  make(map[RepoID]Repository),
		passed: make(map[RepoID]map[levels.CheckName]struct{}),
		deps:   make(map[RepoID]map[RepoID]struct{}),
	}
}

// AddRepository registers a repository node. Re-adding an id overwrites the
// display name; the last write wins.
func (b *Builder) AddRepository(id RepoID, name string) *Builder {
	b.repos[id] = Repository{ID: id, Name: name}
	return b
}

// RecordCheck records the outcome of one named check for a repository.
// Only passed results are materialized: recording passed=false is a no-op,
// matching the open-world reading where an unreported check is not passed.
func (b *Builder) RecordCheck(id RepoID, check levels.CheckName, passed bool) *Builder {
	if !passed {
		return b
	}
	set, ok := b.passed[id]
	if !ok {
		set = make(map[levels.CheckName]struct{})
		b.passed[id] = set
	}
	set[check] = struct{}{}
	return b
}

// AddDependency records that repo depends on dep. Duplicate edges collapse;
// self-loops and edges to unknown ids are accepted as ingested and left to
// the engine's cycle and missing-dependency handling.
func (b *Builder) AddDependency(repo, dep RepoID) *Builder {
	set, ok := b.deps[repo]
	if !ok {
		set = make(map[RepoID]struct{})
		b.deps[repo] = set
	}
	set[dep] = struct{}{}
	return b
}

// Build copies the accumulated facts into an immutable Snapshot. The Builder
// remains usable; later additions do not affect snapshots already built.
func (b *Builder) Build() *Snapshot {
	s := &Snapshot{
		repos:  make(map[RepoID]Repository, len(b.repos)),
		order:  make([]RepoID, 0, len(b.repos)),
		passed: make(map[RepoID]map[levels.CheckName]struct{}, len(b.passed)),
		deps:   make(map[RepoID]map[RepoID]struct{}, len(b.deps)),
	}
	for id, r := range b.repos {
		s.repos[id] = r
		s.order = append(s.order, id)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })

	for id, set := range b.passed {
		cp := make(map[levels.CheckName]struct{}, len(set))
		for c := range set {
			cp[c] = struct{}{}
		}
		s.passed[id] = cp
	}
	for id, set := range b.deps {
		cp := make(map[RepoID]struct{}, len(set))
		for d := range set {
			cp[d] = struct{}{}
		}
		s.deps[id] = cp
	}
	return s
}
