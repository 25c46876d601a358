package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory until they are dumped.
type RingTracer struct {
	level Level

	mu     sync.Mutex
	buf    []Event
	next   int
	filled bool
}

// NewRingTracer keeps up to size events.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{level: level, buf: make([]Event, size)}
}

func (r *RingTracer) Emit(ev *Event) {
	if !r.level.records(ev.Scope) {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = *ev
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.filled = true
	}
	r.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dump writes the snapshot to w.
func (r *RingTracer) Dump(w io.Writer, f Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(ev.Encode(f)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RingTracer) Flush() error { return nil }
func (r *RingTracer) Close() error { return nil }
func (r *RingTracer) Level() Level { return r.level }
