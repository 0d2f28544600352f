// Package ems implements the event table and the reservation engine.
//
// A Table owns every event created while processing one jobs script. Each
// Event is a fixed rows*cols seat grid where a seat holds 0 (free) or the
// id of the reservation that took it.
//
// # Locking
//
// Three kinds of locks exist, always taken in this order:
//
//  1. The table lock (sync.RWMutex). Create takes it for writing; lookups,
//     List and Reset take it for reading or writing. It is always released
//     before any seat lock is taken.
//  2. Seat locks, one sync.Mutex per seat. Reserve locks the requested seats
//     in ascending (row, col) order and Show locks every seat in ascending
//     index order. Because the grid is stored row-major, both orders are the
//     same total order, so overlapping reservations and concurrent shows can
//     never deadlock.
//  3. The reservation counter lock of an event. It is innermost: taken only
//     while holding the needed seat locks and released before them.
//
// Events are never removed from a table while it is in use, so a handle
// returned by a lookup stays valid without holding the table lock.
//
// # Errors
//
// Every operation returns a *Error carrying an ErrorCode. Callers match with
// errors.Is against the sentinel values (ErrEventNotFound, ...) or use the
// Is* helpers.
package ems
