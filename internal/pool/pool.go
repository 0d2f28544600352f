// Package pool runs every jobs script of a directory, a bounded number at a
// time, each against its own event table.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guilhermedcampos/event-management-system/internal/command"
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/engine"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// Journal records runs and executed lines. *store.Store implements it.
type Journal interface {
	engine.Journal
	WriteRun(ctx context.Context, run store.Run) error
}

// Options configures Run.
type Options struct {
	Directory    string
	MaxProcesses int
	MaxThreads   int
	JobsExt      string
	OutExt       string
	AccessDelay  time.Duration
	MaxSeats     int

	// Optional collaborators.
	Journal   Journal
	Publisher notify.Publisher
	Logger    *slog.Logger
	RunIDs    RunIDGenerator
	Now       func() time.Time
}

// ScriptReport is the outcome of one script.
type ScriptReport struct {
	Script      string `json:"script"`
	Output      string `json:"output"`
	Generations int    `json:"generations"`
	Lines       int    `json:"lines"`
	Failed      int    `json:"failed"`
	Error       string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Summary is the outcome of a whole run.
type Summary struct {
	RunID     string         `json:"run_id"`
	Directory string         `json:"directory"`
	Scripts   []ScriptReport `json:"scripts"`
	// Skipped lists scripts never started because ctx was cancelled.
	Skipped []string `json:"skipped,omitempty"`
}

// Aborted returns the number of scripts that stopped on an I/O error.
func (s *Summary) Aborted() int {
	n := 0
	for _, r := range s.Scripts {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Run processes every script of opts.Directory.
//
// At most MaxProcesses scripts run at once, each with MaxThreads workers
// and a fresh table. Cancelling ctx stops new scripts from starting;
// scripts already running finish normally. A script that cannot be opened
// or written is reported with a STREAM_IO_ERROR and does not affect the
// others. Run itself fails only when the directory cannot be read or the
// run record cannot be written.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = withDefaults(opts)
	logger := opts.Logger

	scripts, err := Discover(opts.Directory, opts.JobsExt)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     opts.RunIDs.Generate(),
		Directory: opts.Directory,
	}
	logger = logger.With("run_id", summary.RunID)

	if opts.Journal != nil {
		run := store.Run{
			ID:           summary.RunID,
			Directory:    opts.Directory,
			MaxProcesses: opts.MaxProcesses,
			MaxThreads:   opts.MaxThreads,
			StartedAt:    opts.Now(),
		}
		if err := opts.Journal.WriteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	logger.Info("run starting", "directory", opts.Directory, "scripts", len(scripts),
		"max_processes", opts.MaxProcesses, "max_threads", opts.MaxThreads)

	clock := engine.NewClock()
	// Scripts that were admitted run to completion even after ctx is cancelled.
	runCtx := context.WithoutCancel(ctx)

	reports := make([]ScriptReport, len(scripts))
	started := make([]bool, len(scripts))

	var g errgroup.Group
	g.SetLimit(opts.MaxProcesses)
	for i, script := range scripts {
		if ctx.Err() != nil {
			break
		}
		i, script := i, script
		// g.Go blocks while MaxProcesses scripts are running; ctx may be
		// cancelled in the meantime.
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			started[i] = true
			reports[i] = runScript(runCtx, opts, summary.RunID, clock, logger, script)
			return nil
		})
	}
	_ = g.Wait()

	for i, script := range scripts {
		if started[i] {
			summary.Scripts = append(summary.Scripts, reports[i])
		} else {
			summary.Skipped = append(summary.Skipped, filepath.Base(script))
		}
	}
	if len(summary.Skipped) > 0 {
		logger.Warn("run interrupted", "skipped", len(summary.Skipped))
	}
	logger.Info("run finished", "scripts", len(summary.Scripts), "aborted", summary.Aborted())
	return summary, nil
}

func withDefaults(opts Options) Options {
	if opts.MaxProcesses < 1 {
		opts.MaxProcesses = 1
	}
	if opts.MaxThreads < 1 {
		opts.MaxThreads = 1
	}
	if opts.JobsExt == "" {
		opts.JobsExt = ".jobs"
	}
	if opts.OutExt == "" {
		opts.OutExt = ".out"
	}
	if opts.MaxSeats < 1 {
		opts.MaxSeats = ems.DefaultMaxSeats
	}
	if opts.Publisher == nil {
		opts.Publisher = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7Generator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

func runScript(ctx context.Context, opts Options, runID string, clock *engine.Clock, logger *slog.Logger, path string) ScriptReport {
	name := filepath.Base(path)
	report := ScriptReport{
		Script: name,
		Output: OutputPath(path, opts.JobsExt, opts.OutExt),
	}
	fail := func(err error) ScriptReport {
		report.Err = err
		report.Error = err.Error()
		logger.Error("script aborted", "script", name, "error", err)
		return report
	}

	in, err := os.Open(path)
	if err != nil {
		return fail(ems.NewStreamError("open script", err))
	}
	defer in.Close()

	out, err := os.OpenFile(report.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fail(ems.NewStreamError("open output", err))
	}

	table := ems.NewTable(ems.WithAccessDelay(opts.AccessDelay), ems.WithMaxSeats(opts.MaxSeats))
	engineOpts := []engine.Option{
		engine.WithWorkers(opts.MaxThreads),
		engine.WithLogger(logger),
		engine.WithPublisher(opts.Publisher),
		engine.WithClock(clock),
		engine.WithRunID(runID),
		engine.WithScript(name),
	}
	if opts.Journal != nil {
		engineOpts = append(engineOpts, engine.WithJournal(opts.Journal))
	}

	res, runErr := engine.New(table, out, engineOpts...).Run(ctx, command.NewParser(in))
	closeErr := out.Close()

	if res != nil {
		report.Generations = res.Generations
		report.Lines = res.Lines
		report.Failed = res.Failed
	}
	if runErr != nil {
		return fail(runErr)
	}
	if closeErr != nil {
		return fail(ems.NewStreamError("close output", closeErr))
	}

	logger.Info("script processed", "script", name, "generations", report.Generations,
		"lines", report.Lines, "failed", report.Failed)
	return report
}
