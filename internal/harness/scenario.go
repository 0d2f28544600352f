package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted conformance test.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Threads is the number of workers. Zero means one.
	Threads int `yaml:"threads,omitempty"`

	// Script is the jobs script to execute.
	Script string `yaml:"script"`

	// ExpectOutput, if set, must equal the script output exactly.
	ExpectOutput *string `yaml:"expect_output,omitempty"`

	// ExpectFailures, if set, is the number of commands expected to fail.
	ExpectFailures *int `yaml:"expect_failures,omitempty"`

	// Assertions validate the journal and output.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Workers returns the worker count for the scenario.
func (s *Scenario) Workers() int {
	if s.Threads < 1 {
		return 1
	}
	return s.Threads
}

// Assertion validates the journal or output of a scenario run.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Line is the 1-based script line (used by outcome).
	Line int `yaml:"line,omitempty"`

	// Outcome is the expected journal outcome code (used by outcome).
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number (used by generations and reservations).
	Count int `yaml:"count,omitempty"`

	// Text is the expected substring (used by output_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome        = "outcome"
	AssertGenerations    = "generations"
	AssertEveryLineOnce  = "every_line_once"
	AssertOutputContains = "output_contains"
	AssertReservations   = "reservations"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Script == "" {
		return fmt.Errorf("script is required")
	}
	if s.Threads < 0 {
		return fmt.Errorf("threads must be non-negative")
	}
	if s.ExpectFailures != nil && *s.ExpectFailures < 0 {
		return fmt.Errorf("expect_failures must be non-negative")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutcome:
		if a.Line < 1 {
			return fmt.Errorf("assertions[%d]: line is required for outcome", index)
		}
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome", index)
		}
	case AssertGenerations:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for generations", index)
		}
	case AssertReservations:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for reservations", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case AssertEveryLineOnce:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
