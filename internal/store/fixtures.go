package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/tests.yaml
var sampleTestsYAML []byte

// SampleTests decodes the bundled sample data. Every returned test passes
// Validate.
func SampleTests() ([]*Test, error) {
	return DecodeTests(sampleTestsYAML)
}

// DecodeTests parses a YAML list of tests and validates each one.
func DecodeTests(data []byte) ([]*Test, error) {
	var tests []*Test
	if err := yaml.Unmarshal(data, &tests); err != nil {
		return nil, fmt.Errorf("failed to decode tests: %w", err)
	}

	for _, t := range tests {
		if err := Validate(t); err != nil {
			return nil, fmt.Errorf("test %q: %w", t.ID, err)
		}
	}

	return tests, nil
}
