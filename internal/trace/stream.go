package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each event as it arrives.
type StreamTracer struct {
	level  Level
	format Format

	mu sync.Mutex
	w  io.Writer
}

func NewStreamTracer(w io.Writer, level Level, f Format) *StreamTracer {
	return &StreamTracer{level: level, format: f, w: w}
}

// Emit drops write errors; a broken trace sink must not fail the command.
func (s *StreamTracer) Emit(ev *Event) {
	if !s.level.records(ev.Scope) {
		return
	}
	line := ev.Encode(s.format)
	s.mu.Lock()
	_, _ = s.w.Write(line) //nolint:errcheck
	s.mu.Unlock()
}

func (s *StreamTracer) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes, then closes the writer when it is an io.Closer.
func (s *StreamTracer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Flush(); err != nil {
		return err
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *StreamTracer) Level() Level { return s.level }
