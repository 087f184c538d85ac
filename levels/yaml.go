package levels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// The YAML form of a requirement table. Example:
//
//	levels:
//	  - level: 0
//	    min_dependency_level: 0
//	  - level: 1
//	    requires: [mcn_build_service_1]
//	    min_dependency_level: 1
//
// The table is versionable configuration: shipping a new table changes the
// semantics of existing check data without a code change.
type tableDoc struct {
	Levels []specDoc `yaml:"levels"`
}

type specDoc struct {
	Level              int      `yaml:"level"`
	Requires           []string `yaml:"requires"`
	MinDependencyLevel int      `yaml:"min_dependency_level"`
}

// ParseTable builds a Table from YAML. The result is validated exactly as
// NewTable validates it.
func ParseTable(data []byte) (*Table, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal requirement table: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("requirement table defines no levels")
	}

	specs := make([]Spec, 0, len(doc.Levels))
	for _, d := range doc.Levels {
		s := Spec{
			Level:              Level(d.Level),
			MinDependencyLevel: Level(d.MinDependencyLevel),
		}
		for _, c := range d.Requires {
			s.Requires = append(s.Requires, CheckName(c))
		}
		specs = append(specs, s)
	}
	return NewTable(specs)
}

// LoadTable reads a requirement table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
