package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/guilhermedcampos/event-management-system/internal/command"
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/engine"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
	"github.com/guilhermedcampos/event-management-system/internal/testutil"
)

// RunID is the fixed run id every scenario is journaled under.
const RunID = "harness-run"

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal and a fresh table for
// isolation. The returned error is reserved for harness failures (the
// journal could not be opened or the script could not be read); failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	runID := testutil.NewFixedRunID(RunID).Generate()
	if err := st.WriteRun(ctx, store.Run{
		ID:           runID,
		Directory:    "harness",
		MaxProcesses: 1,
		MaxThreads:   scenario.Workers(),
		StartedAt:    time.Unix(0, 0).UTC(),
	}); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	rec := notify.NewRecorder()
	eng := engine.New(ems.NewTable(), &out,
		engine.WithWorkers(scenario.Workers()),
		engine.WithJournal(st),
		engine.WithPublisher(rec),
		engine.WithRunID(runID),
		engine.WithScript(scenario.Name),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	report, err := eng.Run(ctx, command.NewParser(strings.NewReader(scenario.Script)))
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	entries, err := st.ReadEntries(ctx, store.Filter{RunID: runID})
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Output = out.String()
	result.Workers = report.Workers
	result.Generations = report.Generations
	result.Lines = report.Lines
	result.Failed = report.Failed
	result.Entries = entries
	result.Reservations = append(result.Reservations, rec.Events()...)

	if scenario.ExpectOutput != nil && *scenario.ExpectOutput != result.Output {
		result.AddError(fmt.Sprintf("output mismatch:\n--- expected\n%s--- actual\n%s", *scenario.ExpectOutput, result.Output))
	}
	if scenario.ExpectFailures != nil && *scenario.ExpectFailures != result.Failed {
		result.AddError(fmt.Sprintf("expected %d failed commands, got %d", *scenario.ExpectFailures, result.Failed))
	}

	for i, assertion := range scenario.Assertions {
		if err := evaluate(result, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return result, nil
}
