package command

import "sync"

// trimThreshold is the buffer length at which a read tries to drop the
// commands every open cursor has already passed.
const trimThreshold = 64

// Stream shares one Source among a cohort of workers.
//
// Every worker observes every command of the script, in order, through its
// own Cursor. The underlying source is read at most once per line: the first
// cursor to reach a position reads it under the stream lock and the command
// is buffered for the others. The buffer is trimmed to the slowest open
// cursor as reading goes on, and Release drops everything before a position
// once no cursor can still reach it.
type Stream struct {
	mu      sync.Mutex
	src     Source
	buf     []Command
	base    int // position of buf[0]
	lastErr error
	cursors map[*Cursor]struct{}
}

// NewStream wraps src.
func NewStream(src Source) *Stream {
	return &Stream{src: src, cursors: make(map[*Cursor]struct{})}
}

// At returns the command at position pos (0-based, counting every line).
//
// Positions below the last Release point are no longer available and panic.
// Once the source fails or is exhausted, the same error is returned for
// every position past the end.
func (s *Stream) At(pos int) (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at(pos)
}

func (s *Stream) at(pos int) (Command, error) {
	if pos < s.base {
		panic("command: position released")
	}
	for pos >= s.base+len(s.buf) {
		if s.lastErr != nil {
			return Command{}, s.lastErr
		}
		cmd, err := s.src.Next()
		if err != nil {
			s.lastErr = err
			return Command{}, err
		}
		s.buf = append(s.buf, cmd)
	}
	return s.buf[pos-s.base], nil
}

// Release drops buffered commands before pos.
func (s *Stream) Release(pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(pos)
}

func (s *Stream) release(pos int) {
	if pos <= s.base {
		return
	}
	n := min(pos-s.base, len(s.buf))
	clear(s.buf[:n])
	s.buf = s.buf[n:]
	s.base += n
}

// trim releases up to the slowest open cursor.
func (s *Stream) trim() {
	if len(s.cursors) == 0 {
		return
	}
	slowest := -1
	for c := range s.cursors {
		if slowest < 0 || c.pos < slowest {
			slowest = c.pos
		}
	}
	s.release(slowest)
}

// Buffered returns the number of commands currently held in memory.
func (s *Stream) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Cursor returns an open read position into the stream starting at pos.
// Open cursors hold back trimming; call Close when done reading.
//
// Create every cursor of a cohort before any of them reads, otherwise
// the first readers may trim past pos.
func (s *Stream) Cursor(pos int) *Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < s.base {
		panic("command: position released")
	}
	c := &Cursor{stream: s, pos: pos}
	s.cursors[c] = struct{}{}
	return c
}

// Cursor is one worker's position in a Stream. It is not safe for
// concurrent use; each worker owns its cursor.
type Cursor struct {
	stream *Stream
	pos    int
}

// Next returns the command at the cursor and advances past it.
// The cursor does not move when an error is returned.
func (c *Cursor) Next() (Command, error) {
	s := c.stream
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, err := s.at(c.pos)
	if err != nil {
		return Command{}, err
	}
	c.pos++
	if len(s.buf) >= trimThreshold {
		s.trim()
	}
	return cmd, nil
}

// Pos returns the position of the next command the cursor will read.
func (c *Cursor) Pos() int {
	return c.pos
}

// Close stops the cursor from holding back trimming. The cursor must not
// be read after Close.
func (c *Cursor) Close() {
	s := c.stream
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, c)
}
