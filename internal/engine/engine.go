package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/guilhermedcampos/event-management-system/internal/command"
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// DefaultWorkers is the cohort size used when none is configured.
const DefaultWorkers = 1

// Journal records executed lines. *store.Store implements it.
type Journal interface {
	Append(ctx context.Context, e store.Entry) error
}

// Engine executes one script against one table.
//
// Thread-safety model:
//   - Run(): call once per Engine; it spawns and joins the workers itself
//   - the table, journal, publisher and clock may be shared with other
//     engines running concurrently
type Engine struct {
	table     *ems.Table
	out       *sink
	workers   int
	logger    *slog.Logger
	journal   Journal
	publisher notify.Publisher
	clock     *Clock
	runID     string
	script    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of workers per generation.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithJournal records every executed line in j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithPublisher sends a confirmation for every successful reservation.
func WithPublisher(p notify.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithClock shares a sequence clock between engines of the same run.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRunID tags journal entries and confirmations with the run id.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// WithScript names the script being executed, for logs and the journal.
func WithScript(name string) Option {
	return func(e *Engine) {
		e.script = name
	}
}

// New creates an Engine that applies commands to table and writes SHOW,
// LIST and HELP output to out.
func New(table *ems.Table, out io.Writer, opts ...Option) *Engine {
	e := &Engine{
		table:     table,
		out:       &sink{w: out},
		workers:   DefaultWorkers,
		logger:    slog.Default(),
		publisher: notify.Nop{},
		clock:     NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("script", e.script)
	return e
}

// Report summarizes one script execution.
type Report struct {
	Script      string `json:"script"`
	Workers     int    `json:"workers"`
	Generations int    `json:"generations"`
	Lines       int    `json:"lines"`
	Failed      int    `json:"failed"`
}

// counters are shared by the workers of one Run.
type counters struct {
	lines  atomic.Int64
	failed atomic.Int64
}

// Run executes the script read from src until it is exhausted.
//
// Each generation spawns the configured number of workers and waits for
// all of them. A generation is never interrupted: ctx is handed to the
// journal and publisher but does not stop workers mid-script.
//
// Returns the report and, if reading the script failed, an *ems.Error with
// code STREAM_IO_ERROR. The report is valid in both cases.
func (e *Engine) Run(ctx context.Context, src command.Source) (*Report, error) {
	stream := command.NewStream(src)
	report := &Report{Script: e.script, Workers: e.workers}
	var cnt counters

	e.logger.Debug("script starting", "workers", e.workers)

	pos := 0
	for {
		report.Generations++
		gen := report.Generations

		// Every cursor is opened before any worker reads so that trimming
		// never passes a worker that has not started yet.
		cohort := make([]*worker, e.workers)
		for i := range cohort {
			cohort[i] = &worker{
				id:         i + 1,
				generation: gen,
				engine:     e,
				cursor:     stream.Cursor(pos),
				counters:   &cnt,
			}
		}

		results := make([]result, e.workers)
		var wg sync.WaitGroup
		for i, w := range cohort {
			i, w := i, w
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = w.run(ctx)
			}()
		}
		wg.Wait()

		next, barrier, readErr := converge(results)
		e.logger.Debug("generation joined", "generation", gen, "barrier", barrier, "next_line", next+1)

		if readErr != nil {
			report.Lines = int(cnt.lines.Load())
			report.Failed = int(cnt.failed.Load())
			e.logger.Error("script read failed", "generation", gen, "error", readErr)
			return report, ems.NewStreamError(fmt.Sprintf("read script %s", e.script), readErr)
		}
		if !barrier {
			break
		}

		pos = next
		stream.Release(pos)
	}

	report.Lines = int(cnt.lines.Load())
	report.Failed = int(cnt.failed.Load())
	e.logger.Debug("script done", "generations", report.Generations, "lines", report.Lines, "failed", report.Failed)
	return report, nil
}

// converge folds the results of one generation.
// Every worker observes every line, so all workers of a generation stop at
// the same barrier (or all at end of stream) and report the same position.
func converge(results []result) (next int, barrier bool, err error) {
	for _, r := range results {
		if r.err != nil && err == nil {
			err = r.err
		}
		if r.status == HitBarrier {
			barrier = true
		}
		if r.pos > next {
			next = r.pos
		}
	}
	return next, barrier, err
}
