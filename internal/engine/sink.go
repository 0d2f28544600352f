package engine

import (
	"io"
	"sync"
)

// sink serializes writes from the workers of one script.
// Each Write lands contiguously in the underlying writer.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
