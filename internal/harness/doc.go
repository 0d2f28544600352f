// Package harness runs jobs-script scenarios for conformance testing.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	threads: 2
//	script: |
//	  CREATE 1 2 2
//	  BARRIER
//	  RESERVE 1 [(1,1)]
//	  BARRIER
//	  SHOW 1
//	expect_output: |
//	  1 0
//	  0 0
//	expect_failures: 0
//	assertions:
//	  - type: outcome
//	    line: 3
//	    outcome: OK
//	  - type: generations
//	    count: 3
//
// # Assertion Types
//
//   - outcome: the journal entry of a line has the given outcome code
//   - generations: the script ran in exactly count generations
//   - every_line_once: every line was journaled exactly once, by its owner
//   - output_contains: the output contains text
//   - reservations: exactly count reservations were confirmed
//
// # Deterministic Testing
//
// Each scenario runs against a fresh table and an in-memory SQLite journal
// with a fixed run id. Output is only deterministic when the script orders
// its output-producing lines, either with threads: 1 or with barriers;
// golden files assume scenarios do.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/reserve.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
