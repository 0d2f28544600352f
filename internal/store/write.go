package store

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Run describes one batch invocation of the runner.
type Run struct {
	ID           string    `json:"id"`
	Directory    string    `json:"directory"`
	MaxProcesses int       `json:"max_processes"`
	MaxThreads   int       `json:"max_threads"`
	StartedAt    time.Time `json:"started_at"`
}

// Entry records the execution of one script line.
type Entry struct {
	RunID      string `json:"run_id"`
	Script     string `json:"script"`
	Generation int    `json:"generation"`
	Worker     int    `json:"worker"`
	Line       int    `json:"line"`
	Kind       string `json:"kind"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message,omitempty"`
	Seq        int64  `json:"seq"`
}

// OutcomeOK is the outcome of a line that executed without error.
const OutcomeOK = "OK"

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING so a retried write is harmless.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, directory, max_processes, max_threads, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Directory,
		run.MaxProcesses,
		run.MaxThreads,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// Append inserts an entry.
//
// Script names are stored in Unicode NFC so a name read from a
// decomposing file system matches the same name typed on a command line.
//
// The run referenced by RunID must exist (foreign key constraint), and a
// second entry for the same (run, script, line) is rejected.
func (s *Store) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries
		(run_id, script, generation, worker, line, kind, outcome, message, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.RunID,
		norm.NFC.String(e.Script),
		e.Generation,
		e.Worker,
		e.Line,
		e.Kind,
		e.Outcome,
		e.Message,
		e.Seq,
	)
	if err != nil {
		return fmt.Errorf("append entry %s:%d: %w", e.Script, e.Line, err)
	}
	return nil
}
