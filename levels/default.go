package levels

// Check ids used by the default table. They follow the SLSA-oriented
// vocabulary of the check-execution subsystem.
const (
	CheckBuildService          CheckName = "mcn_build_service_1"
	CheckProvenanceAvailable   CheckName = "mcn_provenance_available_1"
	CheckProvenanceLevelThree  CheckName = "mcn_provenance_level_three_1"
	CheckProvenanceExpectation CheckName = "mcn_provenance_expectation_1"
)

// DefaultTable returns the authored requirement table for the 0..4 scale.
//
// Note the dependency thresholds: level 3 keeps level 2's floor of 2 while
// level 4 jumps to 4. The asymmetry is intentional policy and must not be
// smoothed out here.
func DefaultTable() *Table {
	t, err := NewTable([]Spec{
		{Level: 0, Requires: nil, MinDependencyLevel: 0},
		{
			Level:              1,
			Requires:           []CheckName{CheckBuildService},
			MinDependencyLevel: 1,
		},
		{
			Level:              2,
			Requires:           []CheckName{CheckBuildService, CheckProvenanceAvailable},
			MinDependencyLevel: 2,
		},
		{
			Level:              3,
			Requires:           []CheckName{CheckBuildService, CheckProvenanceAvailable, CheckProvenanceLevelThree},
			MinDependencyLevel: 2,
		},
		{
			Level:              4,
			Requires:           []CheckName{CheckBuildService, CheckProvenanceAvailable, CheckProvenanceLevelThree, CheckProvenanceExpectation},
			MinDependencyLevel: 4,
		},
	})
	if err != nil {
		// The default table is a compile-time constant in all but syntax.
		panic(err)
	}
	return t
}
