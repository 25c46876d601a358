// Package trace records what pytutor did during one command or language
// server session: commands, detect and run passes, diagnosed files and
// individual findings. Events go to a stream, an in-memory ring, or both.
//
//	pytutor diag --trace=- --trace-level=detail lessons/
//
// Tracers travel through context; code under trace calls StartSpan or Mark
// and never checks the level itself.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
}

// Level selects which scopes are recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // commands and passes
	LevelDetail       // plus one span per diagnosed file
	LevelDebug        // plus every finding
)

var levelNames = [...]string{"off", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", l)
}

// ParseLevel accepts the names printed by String, in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected %s)", s, strings.Join(levelNames[:], "|"))
}

// records reports whether events of scope pass at level l. LevelPhase is
// the first level and covers the first two scopes; each further level adds
// one scope.
func (l Level) records(scope Scope) bool {
	return l != LevelOff && int(scope) <= int(l)+1
}

// Mode is where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1
	ModeRing
	ModeBoth
)

// ParseMode maps stream, ring and both onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return 0, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// DefaultRingSize is used when Config.RingSize is not positive.
const DefaultRingSize = 4096

// Config describes the tracer of one invocation.
type Config struct {
	Level      Level
	Mode       Mode
	Output     io.Writer // stream destination; OutputPath is used when nil
	OutputPath string    // "" or "-" is stderr; .ndjson and .jsonl select NDJSON
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	if cfg.Mode == ModeRing {
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	}
	if cfg.Mode != ModeStream && cfg.Mode != ModeBoth {
		return nil, fmt.Errorf("unknown trace mode %d", cfg.Mode)
	}

	w := cfg.Output
	if w == nil {
		var err error
		if w, err = openOutput(cfg.OutputPath); err != nil {
			return nil, err
		}
	}
	stream := NewStreamTracer(w, cfg.Level, FormatForPath(cfg.OutputPath))
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return &MultiTracer{level: cfg.Level, tracers: []Tracer{stream, NewRingTracer(cfg.RingSize, cfg.Level)}}, nil
}

func openOutput(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return stderrWriter{}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// stderrWriter is not an io.Closer, so closing the tracer leaves stderr open.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) { return os.Stderr.Write(p) }

// Nop discards everything.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }

// MultiTracer hands each event to several tracers.
type MultiTracer struct {
	level   Level
	tracers []Tracer
}

// NewMultiTracer fans out to tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, tracers: tracers}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, inner := range t.tracers {
		cp := *ev
		inner.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }
func (t *MultiTracer) Level() Level { return t.level }

// each calls fn on every tracer and keeps the first error.
func (t *MultiTracer) each(fn func(Tracer) error) error {
	var first error
	for _, inner := range t.tracers {
		if err := fn(inner); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FindRing returns the ring buffer behind t, looking inside a MultiTracer.
func FindRing(t Tracer) (*RingTracer, bool) {
	switch v := t.(type) {
	case *RingTracer:
		return v, true
	case *MultiTracer:
		for _, inner := range v.tracers {
			if ring, ok := FindRing(inner); ok {
				return ring, true
			}
		}
	}
	return nil, false
}
