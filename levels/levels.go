// Package levels defines the aggregate maturity level scale and the
// requirement table that drives level aggregation.
//
// A requirement table maps each level to the set of checks a repository must
// pass itself ("own requirement") and to the minimum aggregate level every
// one of its dependencies must reach. The table is pure configuration: the
// aggregation engine interprets it but never hard-codes level semantics.
package levels

import (
	"errors"
	"fmt"
	"sort"
)

// Level is an aggregate maturity level. Valid values run contiguously from 0
// up to the table's maximum (4 in the default table).
type Level int

// CheckName identifies a boolean check produced by the external
// check-execution subsystem (e.g. "mcn_build_as_code_1"). A check that was
// never reported counts as not passed.
type CheckName string

// Spec describes one level of the requirement table.
type Spec struct {
	// Level this spec applies to.
	Level Level

	// Requires lists the checks the repository itself must pass to be
	// eligible for this level. All of them must pass. An empty list means the
	// level has no own requirement.
	//
	// By convention each level restates the previous level's checks plus new
	// ones, but the engine evaluates every level's list independently as
	// authored and does not assume cumulativeness.
	Requires []CheckName

	// MinDependencyLevel is the aggregate level every direct dependency must
	// meet or exceed for the repository to be eligible for this level. It is
	// ignored for repositories with no dependencies.
	//
	// Thresholds are allowed to be non-monotone across levels; the table is
	// preserved exactly as authored.
	MinDependencyLevel Level
}

// Table is a validated, read-only requirement table covering levels 0..Max().
type Table struct {
	specs []Spec
}

// NewTable validates specs and builds a Table.
//
// Validation is fatal by design: a malformed table refuses to construct
// rather than producing an engine with surprising semantics. Rules:
//   - the table must not be empty
//   - levels must be contiguous starting at 0, with no duplicates
//   - level 0 must have an empty requirement and a zero dependency threshold,
//     so every known repository can always reach at least level 0
//   - every threshold must lie within 0..max level
//   - check names must not be blank
func NewTable(specs []Spec) (*Table, error) {
	if len(specs) == 0 {
		return nil, errors.New("requirement table is empty")
	}

	ordered := make([]Spec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level < ordered[j].Level })

	max := Level(len(ordered) - 1)
	for i, s := range ordered {
		if s.Level != Level(i) {
			if i > 0 && ordered[i-1].Level == s.Level {
				return nil, fmt.Errorf("requirement table defines level %d more than once", s.Level)
			}
			return nil, fmt.Errorf("requirement table levels must be contiguous from 0: missing level %d", i)
		}
		if s.MinDependencyLevel < 0 || s.MinDependencyLevel > max {
			return nil, fmt.Errorf("level %d: min dependency level %d outside 0..%d", s.Level, s.MinDependencyLevel, max)
		}
		for _, c := range s.Requires {
			if c == "" {
				return nil, fmt.Errorf("level %d: blank check name", s.Level)
			}
		}
	}

	base := ordered[0]
	if len(base.Requires) != 0 {
		return nil, errors.New("level 0 must have no own requirement")
	}
	if base.MinDependencyLevel != 0 {
		return nil, errors.New("level 0 must have a zero dependency threshold")
	}

	// Deep-copy the check lists so later mutation of the caller's slices
	// cannot change table semantics mid-run.
	for i := range ordered {
		ordered[i].Requires = append([]CheckName(nil), ordered[i].Requires...)
	}

	return &Table{specs: ordered}, nil
}

// Max returns the highest level the table defines.
func (t *Table) Max() Level {
	return Level(len(t.specs) - 1)
}

// Requires returns a copy of the own-requirement check list for level l.
// It panics if l is outside 0..Max(); the table is validated configuration
// and an out-of-range level is a programming error.
func (t *Table) Requires(l Level) []CheckName {
	t.mustContain(l)
	return append([]CheckName(nil), t.specs[l].Requires...)
}

// MinDependencyLevel returns the dependency threshold for level l.
// It panics if l is outside 0..Max().
func (t *Table) MinDependencyLevel(l Level) Level {
	t.mustContain(l)
	return t.specs[l].MinDependencyLevel
}

func (t *Table) mustContain(l Level) {
	if l < 0 || int(l) >= len(t.specs) {
		panic(fmt.Sprintf("levels: level %d outside table range 0..%d", l, len(t.specs)-1))
	}
}
