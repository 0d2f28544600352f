package testutil

// FixedRunID returns the same run id every time.
//
// Used where a run id ends up in golden output or journal assertions.
// Safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator for id.
// An empty id yields "test-run-default".
func NewFixedRunID(id string) FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return FixedRunID{id: id}
}

// Generate returns the fixed run id.
func (g FixedRunID) Generate() string {
	return g.id
}
