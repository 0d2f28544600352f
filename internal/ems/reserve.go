package ems

import (
	"bytes"
	"io"
	"sort"
	"strconv"
)

// MaxReservationSize is the largest number of seats one RESERVE may request.
const MaxReservationSize = 256

// Reserve stamps a new reservation id into every requested seat of event id.
//
// The call is all-or-nothing. Seats are checked in request order and the
// first failure is returned:
//   - ErrDuplicateSeatInRequest if a seat appears twice (nothing is locked)
//   - ErrInvalidSeat if a seat lies outside the grid
//   - ErrSeatAlreadyReserved if a seat is taken
//
// Every in-grid seat of the request is locked in ascending (row, col) order
// before any seat is read, and stays locked until the call returns. The
// reservation id is drawn from the event counter only after every seat has
// been checked, so a failed call leaves both the seats and the counter
// exactly as they were.
func (t *Table) Reserve(id uint32, seats []Seat) (uint32, error) {
	ev, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}

	if len(seats) == 0 {
		return 0, &Error{Code: CodeInvalidSeat, Message: "no seats requested", EventID: id}
	}

	sorted := make([]Seat, len(seats))
	copy(sorted, seats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return 0, seatError(CodeDuplicateSeatInRequest, "seat requested more than once", id, sorted[i])
		}
	}

	held := make([]int, 0, len(sorted))
	for _, s := range sorted {
		if !ev.contains(s) {
			continue
		}
		idx := ev.index(s)
		ev.locks[idx].Lock()
		held = append(held, idx)
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			ev.locks[held[i]].Unlock()
		}
	}()

	for _, s := range seats {
		if !ev.contains(s) {
			return 0, seatError(CodeInvalidSeat, "seat outside the grid", id, s)
		}
		t.delay()
		if ev.seats[ev.index(s)] != 0 {
			return 0, seatError(CodeSeatAlreadyReserved, "seat already reserved", id, s)
		}
	}

	reservation := ev.nextReservation()
	for _, s := range seats {
		t.delay()
		ev.seats[ev.index(s)] = reservation
	}

	return reservation, nil
}

// Show writes the grid of event id, one line per row with the seat values
// separated by single spaces.
//
// All seat locks are held while the grid is read, so the output never mixes
// states from before and after a concurrent reservation. Nothing is written
// when the event does not exist.
func (t *Table) Show(id uint32, w io.Writer) error {
	ev, err := t.Lookup(id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	ev.lockAll()
	for r := 0; r < ev.rows; r++ {
		for c := 0; c < ev.cols; c++ {
			if c > 0 {
				buf.WriteByte(' ')
			}
			t.delay()
			buf.WriteString(strconv.FormatUint(uint64(ev.seats[r*ev.cols+c]), 10))
		}
		buf.WriteByte('\n')
	}
	ev.unlockAll()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return NewStreamError("write event grid", err)
	}
	return nil
}
