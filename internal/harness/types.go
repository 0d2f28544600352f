package harness

import (
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: all expectations and assertions held.
	Pass bool `json:"pass"`

	// Output is everything the script wrote (SHOW, LIST, HELP).
	Output string `json:"output"`

	// Workers is the cohort size the script ran with.
	Workers int `json:"workers"`

	Generations int `json:"generations"`
	Lines       int `json:"lines"`
	Failed      int `json:"failed"`

	// Entries is the journal of the run ordered by seq.
	Entries []store.Entry `json:"entries"`

	// Reservations are the confirmations published during the run.
	Reservations []notify.ReservationConfirmed `json:"reservations"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Entries:      []store.Entry{},
		Reservations: []notify.ReservationConfirmed{},
		Errors:       []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
