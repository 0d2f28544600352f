package harness

import (
	"fmt"
	"strings"

	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes the journal to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Entries  []store.Entry // Journal for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Entries) > 0 {
		fmt.Fprintf(&buf, "\nJournal:\n")
		for _, entry := range e.Entries {
			fmt.Fprintf(&buf, "  [%d] gen=%d worker=%d line=%d %s %s\n",
				entry.Seq, entry.Generation, entry.Worker, entry.Line, entry.Kind, entry.Outcome)
		}
	}

	return buf.String()
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertOutcome:
		return assertOutcome(r, a)
	case AssertGenerations:
		if r.Generations != a.Count {
			return &AssertionError{
				Type:     AssertGenerations,
				Expected: fmt.Sprintf("%d generations", a.Count),
				Actual:   fmt.Sprintf("%d generations", r.Generations),
				Entries:  r.Entries,
			}
		}
	case AssertEveryLineOnce:
		return assertEveryLineOnce(r)
	case AssertOutputContains:
		if !strings.Contains(r.Output, a.Text) {
			return &AssertionError{
				Type:     AssertOutputContains,
				Expected: fmt.Sprintf("output containing %q", a.Text),
				Actual:   fmt.Sprintf("%q", r.Output),
			}
		}
	case AssertReservations:
		if len(r.Reservations) != a.Count {
			return &AssertionError{
				Type:     AssertReservations,
				Expected: fmt.Sprintf("%d confirmed reservations", a.Count),
				Actual:   fmt.Sprintf("%d confirmed reservations", len(r.Reservations)),
				Entries:  r.Entries,
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertOutcome checks the journaled outcome of one line.
func assertOutcome(r *Result, a Assertion) error {
	for _, e := range r.Entries {
		if e.Line == a.Line {
			if e.Outcome != a.Outcome {
				return &AssertionError{
					Type:     AssertOutcome,
					Expected: fmt.Sprintf("line %d outcome %s", a.Line, a.Outcome),
					Actual:   fmt.Sprintf("line %d outcome %s (%s)", a.Line, e.Outcome, e.Message),
					Entries:  r.Entries,
				}
			}
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertOutcome,
		Expected: fmt.Sprintf("line %d in journal", a.Line),
		Actual:   "not found in journal",
		Entries:  r.Entries,
	}
}

// assertEveryLineOnce checks that lines 1..Lines were each journaled exactly
// once, by worker (line mod workers)+1.
func assertEveryLineOnce(r *Result) error {
	seen := make(map[int]int, len(r.Entries))
	for _, e := range r.Entries {
		seen[e.Line]++
		if want := e.Line%r.Workers + 1; e.Worker != want {
			return &AssertionError{
				Type:     AssertEveryLineOnce,
				Expected: fmt.Sprintf("line %d executed by worker %d", e.Line, want),
				Actual:   fmt.Sprintf("executed by worker %d", e.Worker),
				Entries:  r.Entries,
			}
		}
	}
	for line := 1; line <= r.Lines; line++ {
		if n := seen[line]; n != 1 {
			return &AssertionError{
				Type:     AssertEveryLineOnce,
				Expected: fmt.Sprintf("line %d executed once", line),
				Actual:   fmt.Sprintf("executed %d times", n),
				Entries:  r.Entries,
			}
		}
	}
	if len(seen) != r.Lines {
		return &AssertionError{
			Type:     AssertEveryLineOnce,
			Expected: fmt.Sprintf("%d journaled lines", r.Lines),
			Actual:   fmt.Sprintf("%d journaled lines", len(seen)),
			Entries:  r.Entries,
		}
	}
	return nil
}
