package engine

// Status is the reason a worker stopped.
type Status int

const (
	// Completed means the worker reached the end of the script.
	Completed Status = iota
	// HitBarrier means the worker stopped at a BARRIER line.
	HitBarrier
)

// String returns a lowercase name for s.
func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case HitBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// result is what a worker hands back to the engine when it stops.
type result struct {
	status Status
	pos    int   // stream position just past the last line read
	err    error // script read failure, if any
}
