package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/guilhermedcampos/event-management-system/internal/command"
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// OutcomeInvalid is the journal outcome of a line that failed to parse.
const OutcomeInvalid = "INVALID_COMMAND"

type worker struct {
	id         int
	generation int
	engine     *Engine
	cursor     *command.Cursor
	counters   *counters
}

// owns reports whether this worker executes the given 1-based line.
func (w *worker) owns(line int) bool {
	return line%w.engine.workers+1 == w.id
}

func (w *worker) run(ctx context.Context) result {
	defer w.cursor.Close()

	for {
		cmd, err := w.cursor.Next()
		if errors.Is(err, io.EOF) {
			return result{status: Completed, pos: w.cursor.Pos()}
		}
		if err != nil {
			return result{status: Completed, pos: w.cursor.Pos(), err: err}
		}

		owned := w.owns(cmd.Line)

		switch cmd.Kind {
		case command.KindBarrier:
			if owned {
				w.record(ctx, cmd, nil, "")
			}
			return result{status: HitBarrier, pos: w.cursor.Pos()}

		case command.KindWait:
			w.wait(ctx, cmd, owned)

		default:
			if owned {
				w.execute(ctx, cmd)
			}
		}
	}
}

// wait handles a WAIT line. Every worker reads the line, so an untargeted
// wait puts each of them to sleep and a targeted one is slept by the target
// itself when its cursor reaches the line. The owner only journals it.
func (w *worker) wait(ctx context.Context, cmd command.Command, owned bool) {
	if cmd.Target == 0 || cmd.Target == w.id {
		w.engine.logger.Debug("waiting", "worker", w.id, "line", cmd.Line, "delay", cmd.Delay)
		ems.Wait(cmd.Delay)
	}
	if !owned {
		return
	}

	if cmd.Target > w.engine.workers {
		w.engine.logger.Warn("wait target out of range",
			"worker", w.id, "line", cmd.Line, "target", cmd.Target, "workers", w.engine.workers)
		w.record(ctx, cmd, nil, "no such worker")
		return
	}
	w.record(ctx, cmd, nil, "")
}

func (w *worker) execute(ctx context.Context, cmd command.Command) {
	e := w.engine
	var err error

	switch cmd.Kind {
	case command.KindEmpty:
	case command.KindCreate:
		err = e.table.Create(cmd.EventID, cmd.Rows, cmd.Cols)
	case command.KindReserve:
		var rid uint32
		rid, err = e.table.Reserve(cmd.EventID, cmd.Seats)
		if err == nil {
			w.publish(ctx, cmd, rid)
		}
	case command.KindShow:
		err = e.table.Show(cmd.EventID, e.out)
	case command.KindList:
		err = e.table.List(e.out)
	case command.KindHelp:
		err = ems.Help(e.out)
	case command.KindInvalid:
		err = cmd.Err
	}

	if err != nil {
		w.counters.failed.Add(1)
		e.logger.Warn("command failed",
			"worker", w.id,
			"generation", w.generation,
			"line", cmd.Line,
			"kind", cmd.Kind.String(),
			"error", err,
		)
	}
	w.record(ctx, cmd, err, "")
}

func (w *worker) publish(ctx context.Context, cmd command.Command, rid uint32) {
	e := w.engine
	ev := notify.ReservationConfirmed{
		RunID:         e.runID,
		Script:        e.script,
		Line:          cmd.Line,
		EventID:       cmd.EventID,
		ReservationID: rid,
		Seats:         cmd.Seats,
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn("publish reservation failed",
			"worker", w.id,
			"line", cmd.Line,
			"event_id", cmd.EventID,
			"reservation_id", rid,
			"error", err,
		)
	}
}

// record counts the line and appends it to the journal.
func (w *worker) record(ctx context.Context, cmd command.Command, err error, note string) {
	e := w.engine
	w.counters.lines.Add(1)
	if e.journal == nil {
		return
	}

	entry := store.Entry{
		RunID:      e.runID,
		Script:     e.script,
		Generation: w.generation,
		Worker:     w.id,
		Line:       cmd.Line,
		Kind:       cmd.Kind.String(),
		Outcome:    outcome(cmd, err),
		Message:    note,
		Seq:        e.clock.Next(),
	}
	if err != nil {
		entry.Message = err.Error()
	}
	if jerr := e.journal.Append(ctx, entry); jerr != nil {
		e.logger.Warn("journal append failed", slog.Int("line", cmd.Line), slog.Any("error", jerr))
	}
}

func outcome(cmd command.Command, err error) string {
	if err == nil {
		return store.OutcomeOK
	}
	if cmd.Kind == command.KindInvalid {
		return OutcomeInvalid
	}
	if code := ems.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}
