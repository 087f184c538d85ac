package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// engineMetrics are the optional engine counters. Registration failures are
// reported instead of panicking so a caller re-using a registerer across
// engines gets a plain error from New.
type engineMetrics struct {
	runs         prometheus.Counter
	repositories prometheus.Counter
	cycles       prometheus.Counter
	iterations   prometheus.Counter
}

func newEngineMetrics(reg prometheus.Registerer) (*engineMetrics, error) {
	m := &engineMetrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgrade_aggregation_runs_total",
			Help: "Completed aggregation runs.",
		}),
		repositories: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgrade_repositories_assessed_total",
			Help: "Repositories assigned an aggregate level, summed over runs.",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgrade_dependency_cycles_total",
			Help: "Cyclic dependency components encountered, summed over runs.",
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depgrade_fixpoint_iterations_total",
			Help: "Component evaluation iterations performed, summed over runs.",
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.repositories, m.cycles, m.iterations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
