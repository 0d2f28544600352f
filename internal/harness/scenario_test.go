package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
threads: 2
script: |
  CREATE 1 1 1
  SHOW 1
expect_output: "0\n"
expect_failures: 0
assertions:
  - type: outcome
    line: 1
    outcome: OK
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, 2, scenario.Workers())
	assert.Equal(t, "CREATE 1 1 1\nSHOW 1\n", scenario.Script)
	require.NotNil(t, scenario.ExpectOutput)
	assert.Equal(t, "0\n", *scenario.ExpectOutput)
	require.NotNil(t, scenario.ExpectFailures)
	assert.Zero(t, *scenario.ExpectFailures)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertOutcome, scenario.Assertions[0].Type)
}

func TestLoadScenario_DefaultsToOneWorker(t *testing.T) {
	path := writeScenario(t, "name: a\ndescription: b\nscript: LIST\n")

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 1, scenario.Workers())
	assert.Nil(t, scenario.ExpectOutput)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "name: a\ndescription: b\nscript: LIST\nthread: 2\n", "failed to parse YAML"},
		{"missing name", "description: b\nscript: LIST\n", "name is required"},
		{"missing description", "name: a\nscript: LIST\n", "description is required"},
		{"missing script", "name: a\ndescription: b\n", "script is required"},
		{"negative threads", "name: a\ndescription: b\nscript: LIST\nthreads: -1\n", "threads must be non-negative"},
		{"negative failures", "name: a\ndescription: b\nscript: LIST\nexpect_failures: -2\n", "expect_failures"},
		{"untyped assertion", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - line: 1\n", "type is required"},
		{"unknown assertion", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - type: final_state\n", "unknown assertion type"},
		{"outcome without line", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - type: outcome\n    outcome: OK\n", "line is required"},
		{"outcome without code", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - type: outcome\n    line: 1\n", "outcome is required"},
		{"zero generations", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - type: generations\n", "count must be positive"},
		{"empty text", "name: a\ndescription: b\nscript: LIST\nassertions:\n  - type: output_contains\n", "text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
