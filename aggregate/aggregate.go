// Package aggregate computes the aggregate security maturity level of every
// repository in a fact-store snapshot.
//
// A repository's level is the maximal level whose own check requirements the
// repository satisfies and whose dependency threshold is met by the weakest
// of its direct dependencies. The computation is dependency-ordered over the
// strongly-connected-component condensation of the graph. Inside a cyclic
// component, members start at the level their own checks support and are
// iterated downward until every dependency threshold holds, so a cycle of
// mutually high-maturity repositories keeps its level while one weak member
// drags the whole cycle down. The iteration is bounded, so evaluation
// terminates on any input including self-loops and mutual dependencies.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"depgrade/facts"
	"depgrade/internal/graph"
	"depgrade/levels"
)

// Options configures an Aggregator. The zero value is usable: a discarded
// logger, lenient missing-dependency handling, sequential evaluation, and the
// default iteration budget.
type Options struct {
	// Logger receives debug-level progress and cycle diagnostics. Zero value
	// discards everything.
	Logger logr.Logger

	// StrictDependencies makes Evaluate surface dependency edges that point
	// at unknown repositories as a *MissingDependencyError. The run still
	// completes and every repository still gets a level; lenient mode (the
	// default) only records the edges in Diagnostics. In both modes such an
	// edge contributes level 0 to the dependency floor, the weakest
	// assumption.
	StrictDependencies bool

	// Parallelism bounds how many independent components are evaluated
	// concurrently within one topological layer. 0 means 1 (sequential).
	Parallelism int

	// MaxIterations bounds the fixpoint loop inside one cyclic component.
	// 0 means the table's max level plus one, enough for any cycle whose
	// member count does not exceed the level range. Hitting the bound is
	// recorded in Diagnostics, never an error.
	MaxIterations int

	// Metrics, when non-nil, registers engine counters with the given
	// registerer.
	Metrics prometheus.Registerer
}

// Aggregator evaluates one fact-store snapshot against one requirement
// table. It holds no mutable state between runs; several aggregators over
// different snapshots can coexist.
type Aggregator struct {
	table         *levels.Table
	store         facts.Store
	log           logr.Logger
	strict        bool
	parallelism   int
	maxIterations int
	metrics       *engineMetrics
}

func New(table *levels.Table, store facts.Store, opts *Options) (*Aggregator, error) {
	if table == nil {
		return nil, errors.New("requirement table is nil")
	}
	if store == nil {
		return nil, errors.New("fact store is nil")
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism must be >= 0, got %d", o.Parallelism)
	}
	if o.Parallelism == 0 {
		o.Parallelism = 1
	}
	if o.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must be >= 0, got %d", o.MaxIterations)
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = int(table.Max()) + 1
	}
	log := o.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	var m *engineMetrics
	if o.Metrics != nil {
		var err error
		m, err = newEngineMetrics(o.Metrics)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return &Aggregator{
		table:         table,
		store:         store,
		log:           log,
		strict:        o.StrictDependencies,
		parallelism:   o.Parallelism,
		maxIterations: o.MaxIterations,
		metrics:       m,
	}, nil
}

// Evaluate runs one aggregation pass over the snapshot and returns the
// per-repository levels.
//
// The snapshot must not change while Evaluate runs; that is a collaborator
// contract, not something the engine guards against. The context is
// consulted between layers and components, so cancellation is prompt but
// never leaves a partially-written Result in the caller's hands.
//
// In strict mode a snapshot whose dependency edges reference unknown
// repositories yields both a complete *Result and a *MissingDependencyError;
// every repository keeps its assessment.
func (a *Aggregator) Evaluate(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := uuid.NewString()

	repos := a.store.AllRepositories()
	ids := make([]facts.RepoID, 0, len(repos))
	known := make(map[facts.RepoID]struct{}, len(repos))
	for _, r := range repos {
		ids = append(ids, r.ID)
		known[r.ID] = struct{}{}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Restrict the graph to known nodes. Edges to unknown ids stay visible
	// to the floor computation (as level 0) but must not reach the SCC pass.
	edges := make(map[facts.RepoID][]facts.RepoID, len(ids))
	var missing []MissingDependency
	for _, id := range ids {
		for _, d := range a.store.Dependencies(id) {
			if _, ok := known[d]; ok {
				edges[id] = append(edges[id], d)
			} else {
				missing = append(missing, MissingDependency{Repo: id, Dependency: d})
			}
		}
	}

	comps := graph.StronglyConnected(ids, edges)
	layers := graph.Layers(comps, edges)

	assigned := make(map[facts.RepoID]levels.Level, len(ids))
	var mu sync.RWMutex
	get := func(id facts.RepoID) (levels.Level, bool) {
		mu.RLock()
		defer mu.RUnlock()
		l, ok := assigned[id]
		return l, ok
	}

	var diagMu sync.Mutex
	var cycles [][]facts.RepoID
	var capped [][]facts.RepoID
	totalIterations := 0

	a.log.V(1).Info("aggregation run started",
		"run_id", runID, "repositories", len(ids), "components", len(comps))

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g := new(errgroup.Group)
		g.SetLimit(a.parallelism)
		for _, ci := range layer {
			comp := comps[ci]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				out := a.evaluateComponent(comp, get)

				mu.Lock()
				for id, l := range out.levels {
					assigned[id] = l
				}
				mu.Unlock()

				diagMu.Lock()
				totalIterations += out.iterations
				if comp.Cyclic {
					cycles = append(cycles, comp.Members)
					if !out.converged {
						capped = append(capped, comp.Members)
					}
				}
				diagMu.Unlock()

				if comp.Cyclic {
					a.log.V(1).Info("dependency cycle evaluated",
						"run_id", runID, "members", len(comp.Members),
						"iterations", out.iterations, "converged", out.converged)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	sortMemberLists(cycles)
	sortMemberLists(capped)
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Repo != missing[j].Repo {
			return missing[i].Repo < missing[j].Repo
		}
		return missing[i].Dependency < missing[j].Dependency
	})

	res := &Result{
		RunID:  runID,
		levels: assigned,
		diags: Diagnostics{
			Cycles:              cycles,
			MissingDependencies: missing,
			IterationCapped:     capped,
		},
	}

	if a.metrics != nil {
		a.metrics.runs.Inc()
		a.metrics.repositories.Add(float64(len(ids)))
		a.metrics.cycles.Add(float64(len(cycles)))
		a.metrics.iterations.Add(float64(totalIterations))
	}

	a.log.V(1).Info("aggregation run finished",
		"run_id", runID, "repositories", len(ids),
		"cycles", len(cycles), "missing_dependencies", len(missing))

	if a.strict && len(missing) > 0 {
		return res, &MissingDependencyError{Missing: append([]MissingDependency(nil), missing...)}
	}
	return res, nil
}

type componentResult struct {
	levels     map[facts.RepoID]levels.Level
	iterations int
	converged  bool
}

// evaluateComponent computes levels for one SCC. Acyclic components resolve
// in a single pass. Cyclic components seed every member at the level its own
// checks support with dependencies ignored, then iterate: each sweep
// recomputes members against the current values, and a member's level never
// increases across sweeps (a lower dependency floor only narrows
// eligibility). The loop reaches the unique greatest fixpoint below the
// seeds, normally within two or three sweeps, or stops at the iteration
// budget with the best values reached.
func (a *Aggregator) evaluateComponent(c graph.Component, get func(facts.RepoID) (levels.Level, bool)) componentResult {
	if !c.Cyclic {
		id := c.Members[0]
		return componentResult{
			levels:     map[facts.RepoID]levels.Level{id: a.levelFor(id, get)},
			iterations: 1,
			converged:  true,
		}
	}

	local := make(map[facts.RepoID]levels.Level, len(c.Members))
	for _, m := range c.Members {
		local[m] = a.ownOnlyLevel(m)
	}
	// Members of the cycle read each other from local; everything else is
	// settled in earlier layers.
	lookup := func(id facts.RepoID) (levels.Level, bool) {
		if l, ok := local[id]; ok {
			return l, true
		}
		return get(id)
	}

	iterations := 0
	converged := false
	for iterations < a.maxIterations {
		iterations++
		changed := false
		for _, m := range c.Members {
			next := a.levelFor(m, lookup)
			if next != local[m] {
				local[m] = next
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}

	return componentResult{levels: local, iterations: iterations, converged: converged}
}

// levelFor returns the maximal eligible level for one repository given a
// lookup for already-known dependency levels. A dependency the lookup does
// not know (an id absent from the snapshot) contributes level 0.
func (a *Aggregator) levelFor(id facts.RepoID, get func(facts.RepoID) (levels.Level, bool)) levels.Level {
	passed := make(map[levels.CheckName]struct{})
	for _, c := range a.store.PassedChecks(id) {
		passed[c] = struct{}{}
	}

	deps := a.store.Dependencies(id)
	floor := levels.Level(0)
	if len(deps) > 0 {
		floor = a.table.Max()
		for _, d := range deps {
			l, ok := get(d)
			if !ok {
				l = 0
			}
			if l < floor {
				floor = l
			}
		}
	}

	for l := a.table.Max(); l > 0; l-- {
		if !a.ownSatisfied(passed, l) {
			continue
		}
		if len(deps) > 0 && floor < a.table.MinDependencyLevel(l) {
			continue
		}
		return l
	}
	// Level 0 is always reachable for a known repository: the table
	// guarantees an empty requirement and a zero threshold at the base.
	return 0
}

// ownOnlyLevel is the maximal level the repository's own checks support,
// ignoring dependencies. It seeds the cyclic fixpoint and upper-bounds the
// final level in every case.
func (a *Aggregator) ownOnlyLevel(id facts.RepoID) levels.Level {
	passed := make(map[levels.CheckName]struct{})
	for _, c := range a.store.PassedChecks(id) {
		passed[c] = struct{}{}
	}
	for l := a.table.Max(); l > 0; l-- {
		if a.ownSatisfied(passed, l) {
			return l
		}
	}
	return 0
}

func (a *Aggregator) ownSatisfied(passed map[levels.CheckName]struct{}, l levels.Level) bool {
	for _, c := range a.table.Requires(l) {
		if _, ok := passed[c]; !ok {
			return false
		}
	}
	return true
}

func sortMemberLists(lists [][]facts.RepoID) {
	sort.Slice(lists, func(i, j int) bool {
		// Member lists are sorted and non-empty; first member orders the list.
		return lists[i][0] < lists[j][0]
	})
}
