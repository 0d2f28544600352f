package ems

import (
	"fmt"
	"sync"
)

// Seat is a 1-based (row, col) coordinate in an event grid.
type Seat struct {
	Row int
	Col int
}

// String renders the seat as "(row,col)", the notation used by RESERVE.
func (s Seat) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// less orders seats by row, then column.
func (s Seat) less(o Seat) bool {
	if s.Row != o.Row {
		return s.Row < o.Row
	}
	return s.Col < o.Col
}

// Event is a seat grid with its own reservation state.
//
// The grid is stored row-major: seat (r, c) lives at index (r-1)*cols+c-1.
// seats[i] is guarded by locks[i]; counter is guarded by counterMu.
type Event struct {
	id    uint32
	rows  int
	cols  int
	seats []uint32
	locks []sync.Mutex

	counterMu sync.Mutex
	counter   uint32
}

func newEvent(id uint32, rows, cols int) *Event {
	n := rows * cols
	return &Event{
		id:    id,
		rows:  rows,
		cols:  cols,
		seats: make([]uint32, n),
		locks: make([]sync.Mutex, n),
	}
}

// ID returns the event id.
func (e *Event) ID() uint32 { return e.id }

// Rows returns the number of rows.
func (e *Event) Rows() int { return e.rows }

// Cols returns the number of columns.
func (e *Event) Cols() int { return e.cols }

// Reservations returns the current value of the reservation counter,
// which is also the id of the latest successful reservation.
func (e *Event) Reservations() uint32 {
	e.counterMu.Lock()
	defer e.counterMu.Unlock()
	return e.counter
}

// Snapshot returns a copy of the grid taken under every seat lock.
func (e *Event) Snapshot() [][]uint32 {
	e.lockAll()
	defer e.unlockAll()

	grid := make([][]uint32, e.rows)
	for r := range grid {
		grid[r] = make([]uint32, e.cols)
		copy(grid[r], e.seats[r*e.cols:(r+1)*e.cols])
	}
	return grid
}

// contains reports whether s lies inside the grid.
func (e *Event) contains(s Seat) bool {
	return s.Row >= 1 && s.Row <= e.rows && s.Col >= 1 && s.Col <= e.cols
}

// index returns the row-major index of s. The seat must be inside the grid.
func (e *Event) index(s Seat) int {
	return (s.Row-1)*e.cols + s.Col - 1
}

// nextReservation advances the counter and returns the new id.
// Callers must hold the seat locks of the seats they are about to stamp.
func (e *Event) nextReservation() uint32 {
	e.counterMu.Lock()
	defer e.counterMu.Unlock()
	e.counter++
	return e.counter
}

func (e *Event) lockAll() {
	for i := range e.locks {
		e.locks[i].Lock()
	}
}

func (e *Event) unlockAll() {
	for i := len(e.locks) - 1; i >= 0; i-- {
		e.locks[i].Unlock()
	}
}
