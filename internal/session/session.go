// Package session holds the state a front end keeps around the detector and
// the mock executor: the current text, the latest error list and the
// "is running" flag. Run is gated on a clean detection pass.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"pytutor/internal/detect"
	"pytutor/internal/diag"
	"pytutor/internal/mockexec"
	"pytutor/internal/trace"
)

var (
	// ErrHasErrors is returned by Run while the error list is not empty.
	ErrHasErrors = errors.New("fix the detected errors before running")
	// ErrAlreadyRunning is returned by Run while another run is pending.
	ErrAlreadyRunning = errors.New("a run is already in progress")
)

// Runner is the executor dependency; *mockexec.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, src string) (string, error)
}

// Session is safe for concurrent use.
type Session struct {
	runner  Runner
	running atomic.Bool

	mu     sync.RWMutex
	text   string
	errors []diag.Diagnostic
}

// New creates an empty session. A nil runner means a default mock executor.
func New(runner Runner) *Session {
	if runner == nil {
		runner = &mockexec.Executor{}
	}
	return &Session{runner: runner}
}

// Update stores text, runs a detection pass and replaces the error list.
// It returns the new list.
func (s *Session) Update(ctx context.Context, text string) []diag.Diagnostic {
	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "detect")
	found := detect.Detect(text)
	for _, d := range found {
		trace.Mark(ctx, trace.ScopeFinding, string(d.Kind), fmt.Sprintf("line %d", d.Line))
	}
	span.Attr("diagnostics", strconv.Itoa(len(found))).End("")

	s.mu.Lock()
	s.text = text
	s.errors = found
	s.mu.Unlock()
	return found
}

// Text returns the current source text.
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Errors returns a copy of the current error list.
func (s *Session) Errors() []diag.Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]diag.Diagnostic, len(s.errors))
	copy(out, s.errors)
	return out
}

// Running reports whether a run is pending.
func (s *Session) Running() bool {
	return s.running.Load()
}

// CanRun reports whether Run would start right now.
func (s *Session) CanRun() bool {
	s.mu.RLock()
	clean := len(s.errors) == 0
	s.mu.RUnlock()
	return clean && !s.Running()
}

// Run executes the current text. It refuses with ErrHasErrors while the last
// detection pass found anything and with ErrAlreadyRunning while a previous
// run has not returned yet.
func (s *Session) Run(ctx context.Context) (string, error) {
	s.mu.RLock()
	text, clean := s.text, len(s.errors) == 0
	s.mu.RUnlock()
	if !clean {
		return "", ErrHasErrors
	}
	return s.run(ctx, text)
}

// ForceRun executes the current text regardless of the error list.
func (s *Session) ForceRun(ctx context.Context) (string, error) {
	return s.run(ctx, s.Text())
}

func (s *Session) run(ctx context.Context, text string) (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}
	defer s.running.Store(false)
	return s.runner.Execute(ctx, text)
}
