package ems

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultMaxSeats bounds the grid size of a single event.
const DefaultMaxSeats = 1 << 20

// Table is the set of events created while processing one script.
//
// Events are kept in creation order for List. The table lock guards the
// collection only; seat state is guarded by the per-event locks.
type Table struct {
	mu     sync.RWMutex
	events []*Event
	byID   map[uint32]*Event

	accessDelay time.Duration
	maxSeats    int
}

// Option configures a Table.
type Option func(*Table)

// WithAccessDelay makes every event lookup and seat access sleep for d,
// simulating a costly state store. Zero disables the delay.
func WithAccessDelay(d time.Duration) Option {
	return func(t *Table) {
		t.accessDelay = d
	}
}

// WithMaxSeats sets the largest rows*cols accepted by Create.
func WithMaxSeats(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.maxSeats = n
		}
	}
}

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		byID:     make(map[uint32]*Event),
		maxSeats: DefaultMaxSeats,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create adds an event with a zero-filled rows*cols grid.
//
// Returns ErrDuplicateEvent if the id is taken and ErrAllocationFailure if
// the grid is empty or exceeds the seat limit.
func (t *Table) Create(id uint32, rows, cols int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lookupLocked(id) != nil {
		return &Error{Code: CodeDuplicateEvent, Message: "event already exists", EventID: id}
	}

	if rows <= 0 || cols <= 0 || rows > t.maxSeats/cols {
		return &Error{
			Code:    CodeAllocationFailure,
			Message: fmt.Sprintf("cannot allocate %dx%d seats (limit %d)", rows, cols, t.maxSeats),
			EventID: id,
		}
	}

	ev := newEvent(id, rows, cols)
	t.events = append(t.events, ev)
	t.byID[id] = ev
	return nil
}

// Lookup returns the event with the given id.
// The table lock is held only for the lookup itself.
func (t *Table) Lookup(id uint32) (*Event, error) {
	t.mu.RLock()
	ev := t.lookupLocked(id)
	t.mu.RUnlock()

	if ev == nil {
		return nil, eventNotFound(id)
	}
	return ev, nil
}

func (t *Table) lookupLocked(id uint32) *Event {
	t.delay()
	return t.byID[id]
}

// List writes "Event: <id>" for every event in creation order,
// or "No events" when the table is empty.
func (t *Table) List(w io.Writer) error {
	var buf bytes.Buffer

	t.mu.RLock()
	if len(t.events) == 0 {
		buf.WriteString("No events\n")
	}
	for _, ev := range t.events {
		fmt.Fprintf(&buf, "Event: %d\n", ev.id)
	}
	t.mu.RUnlock()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return NewStreamError("write event list", err)
	}
	return nil
}

// IDs returns the event ids in creation order.
func (t *Table) IDs() []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uint32, len(t.events))
	for i, ev := range t.events {
		ids[i] = ev.id
	}
	return ids
}

// Len returns the number of events.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// Reset drops every event, leaving the table empty and reusable.
// No other operation may be using an event handle when Reset is called.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = nil
	t.byID = make(map[uint32]*Event)
}

func (t *Table) delay() {
	if t.accessDelay > 0 {
		time.Sleep(t.accessDelay)
	}
}

// Wait sleeps for d. It takes no locks.
func Wait(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
