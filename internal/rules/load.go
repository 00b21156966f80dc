package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a user-supplied rule catalog.
// YAML is a superset of JSON, so one decoder covers both formats.
type ruleFile struct {
	Rules []Spec `yaml:"rules" json:"rules"`
}

// LoadFile reads rule specs from a YAML or JSON file. The specs are
// returned uncompiled; callers register them via Catalog.Add so that a
// single malformed entry can be skipped without dropping the rest.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}
	return file.Rules, nil
}

// Extend registers user-supplied specs on top of the built-in catalog.
// Malformed entries are skipped; their errors are returned for logging.
func (c *Catalog) Extend(specs []Spec) []error {
	var skipped []error
	for _, spec := range specs {
		if err := c.Add(spec); err != nil {
			skipped = append(skipped, err)
		}
	}
	return skipped
}
