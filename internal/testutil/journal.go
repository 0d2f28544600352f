// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// MemoryJournal keeps journal entries in memory.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryJournal struct {
	mu      sync.Mutex
	runs    []store.Run
	entries []store.Entry
	fail    bool
}

// NewMemoryJournal returns an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// ErrJournalUnavailable is returned by Append after FailAppends.
var ErrJournalUnavailable = errors.New("journal unavailable")

// FailAppends makes every later Append fail with ErrJournalUnavailable.
func (j *MemoryJournal) FailAppends() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fail = true
}

// WriteRun records run.
func (j *MemoryJournal) WriteRun(_ context.Context, run store.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return ErrJournalUnavailable
	}
	j.runs = append(j.runs, run)
	return nil
}

// Runs returns the recorded runs.
func (j *MemoryJournal) Runs() []store.Run {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]store.Run, len(j.runs))
	copy(out, j.runs)
	return out
}

// Append records e.
func (j *MemoryJournal) Append(_ context.Context, e store.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return ErrJournalUnavailable
	}
	j.entries = append(j.entries, e)
	return nil
}

// Entries returns the recorded entries ordered by seq.
func (j *MemoryJournal) Entries() []store.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]store.Entry, len(j.entries))
	copy(out, j.entries)
	sort.Slice(out, func(a, b int) bool { return out[a].Seq < out[b].Seq })
	return out
}

// ByLine returns the entries of script keyed by line number.
// A line recorded more than once keeps every entry.
func (j *MemoryJournal) ByLine(script string) map[int][]store.Entry {
	byLine := make(map[int][]store.Entry)
	for _, e := range j.Entries() {
		if e.Script == script {
			byLine[e.Line] = append(byLine[e.Line], e)
		}
	}
	return byLine
}
