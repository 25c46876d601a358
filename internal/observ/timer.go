// Package observ collects the phase timings printed by --timings.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer aggregates phase durations by name. Phases repeated per file of a
// directory run collapse into one row with a count and the slowest call.
// A nil *Timer is valid and records nothing.
type Timer struct {
	mu     sync.Mutex
	order  []string
	phases map[string]*phase
	now    func() time.Time
}

type phase struct {
	count int
	total time.Duration
	max   time.Duration
	note  string
}

func NewTimer() *Timer {
	return &Timer{phases: make(map[string]*phase), now: time.Now}
}

// Start begins one occurrence of name. The returned func ends it; its note
// replaces the previous note of the phase when non-empty.
func (t *Timer) Start(name string) (stop func(note string)) {
	if t == nil {
		return func(string) {}
	}
	began := t.clock()
	return func(note string) {
		t.add(name, t.clock().Sub(began), note)
	}
}

// Measure runs fn as one occurrence of name.
func (t *Timer) Measure(name string, fn func() string) {
	stop := t.Start(name)
	stop(fn())
}

func (t *Timer) clock() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now()
}

func (t *Timer) add(name string, d time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.phases[name]
	if !ok {
		p = &phase{}
		t.phases[name] = p
		t.order = append(t.order, name)
	}
	p.count++
	p.total += d
	p.max = max(p.max, d)
	if note != "" {
		p.note = note
	}
}

// PhaseReport is one row of the summary.
type PhaseReport struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
	Note    string  `json:"note,omitempty"`
}

// Report lists phases in the order they first finished.
func (t *Timer) Report() []PhaseReport {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PhaseReport, 0, len(t.order))
	for _, name := range t.order {
		p := t.phases[name]
		out = append(out, PhaseReport{
			Name:    name,
			Count:   p.count,
			TotalMS: millis(p.total),
			MaxMS:   millis(p.max),
			Note:    p.note,
		})
	}
	return out
}

// Summary renders the report for stderr:
//
//	timings:
//	  detect        12.40 ms  x31 (max 1.10 ms)  // 31 files
func (t *Timer) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range t.Report() {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.TotalMS)
		if p.Count > 1 {
			fmt.Fprintf(&b, "  x%d (max %.2f ms)", p.Count, p.MaxMS)
		}
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
