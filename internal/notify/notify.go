// Package notify publishes reservation confirmations to interested parties.
//
// Publishing is best effort: the engine logs a failed Publish and the
// reservation stands.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/guilhermedcampos/event-management-system/internal/ems"
)

// ReservationConfirmed is emitted after a successful RESERVE.
type ReservationConfirmed struct {
	RunID         string     `json:"run_id,omitempty"`
	Script        string     `json:"script"`
	Line          int        `json:"line"`
	EventID       uint32     `json:"event_id"`
	ReservationID uint32     `json:"reservation_id"`
	Seats         []ems.Seat `json:"seats"`
	ConfirmedAt   time.Time  `json:"confirmed_at"`
}

// Publisher delivers confirmations. Implementations must be safe for
// concurrent use; every worker of every script shares one publisher.
type Publisher interface {
	Publish(ctx context.Context, ev ReservationConfirmed) error
}

// Nop discards every confirmation.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, ReservationConfirmed) error { return nil }

// Recorder keeps confirmations in memory.
type Recorder struct {
	mu     sync.Mutex
	events []ReservationConfirmed
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, ev ReservationConfirmed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded confirmations in publish order.
func (r *Recorder) Events() []ReservationConfirmed {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ReservationConfirmed, len(r.events))
	copy(out, r.events)
	return out
}
