package aggregate

import (
	"errors"
	"fmt"

	"depgrade/facts"
	"depgrade/levels"
)

// ErrUnknownRepository is returned by Result queries for a repository the
// evaluated snapshot did not contain. It keeps "not assessed" distinct from
// "assessed at level 0".
var ErrUnknownRepository = errors.New("unknown repository")

// Result holds the outcome of one aggregation run. It is immutable and safe
// for concurrent reads.
type Result struct {
	// RunID uniquely identifies the run that produced this result, so
	// results from coexisting runs over revised snapshots can be told apart.
	RunID string

	levels map[facts.RepoID]levels.Level
	diags  Diagnostics
}

// AggregateLevel returns the repository's aggregate level. It never fails
// for a repository that was in the snapshot; for any other id it returns an
// error wrapping ErrUnknownRepository.
func (r *Result) AggregateLevel(id facts.RepoID) (levels.Level, error) {
	l, ok := r.levels[id]
	if !ok {
		return 0, fmt.Errorf("repository %q: %w", id, ErrUnknownRepository)
	}
	return l, nil
}

// MeetsLevel reports whether the repository's aggregate level is at least
// min. Errors exactly as AggregateLevel does.
func (r *Result) MeetsLevel(id facts.RepoID, min levels.Level) (bool, error) {
	l, err := r.AggregateLevel(id)
	if err != nil {
		return false, err
	}
	return l >= min, nil
}

// Levels returns a copy of the full per-repository level map.
func (r *Result) Levels() map[facts.RepoID]levels.Level {
	out := make(map[facts.RepoID]levels.Level, len(r.levels))
	for id, l := range r.levels {
		out[id] = l
	}
	return out
}

// Diagnostics returns the run's diagnostics. The returned value shares no
// mutable state with the Result.
func (r *Result) Diagnostics() Diagnostics {
	return r.diags.clone()
}
