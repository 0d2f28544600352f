// Package command turns jobs scripts into typed commands and exposes them
// through a shared, lockable stream.
//
// Script grammar, one command per line:
//
//	CREATE <event_id> <num_rows> <num_columns>
//	RESERVE <event_id> [(<x1>,<y1>) (<x2>,<y2>) ...]
//	SHOW <event_id>
//	LIST
//	WAIT <delay_ms> [thread_id]
//	BARRIER
//	HELP
//
// Blank lines and lines starting with '#' are Empty commands. Anything else
// is an Invalid command carrying the parse error. Line numbers are 1-based
// and count every line of the script, including empty ones.
package command

import (
	"time"

	"github.com/guilhermedcampos/event-management-system/internal/ems"
)

// Kind identifies a command type.
type Kind int

const (
	KindInvalid Kind = iota
	KindEmpty
	KindCreate
	KindReserve
	KindShow
	KindList
	KindWait
	KindBarrier
	KindHelp
)

var kindNames = map[Kind]string{
	KindInvalid: "INVALID",
	KindEmpty:   "EMPTY",
	KindCreate:  "CREATE",
	KindReserve: "RESERVE",
	KindShow:    "SHOW",
	KindList:    "LIST",
	KindWait:    "WAIT",
	KindBarrier: "BARRIER",
	KindHelp:    "HELP",
}

// String returns the script keyword for k.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Command is one parsed script line.
//
// Only the fields relevant to Kind are set.
type Command struct {
	Kind Kind
	Line int

	// EventID is set for CREATE, RESERVE and SHOW.
	EventID uint32

	// Rows and Cols are set for CREATE.
	Rows int
	Cols int

	// Seats is set for RESERVE, in request order.
	Seats []ems.Seat

	// Delay is set for WAIT.
	Delay time.Duration

	// Target is the worker a WAIT applies to. Zero means every worker.
	Target int

	// Err describes why an Invalid command was rejected.
	Err error
}

// Source yields commands one at a time.
// Next returns io.EOF once the script is exhausted.
type Source interface {
	Next() (Command, error)
}
