// Package mockexec pretends to run a Python program: after an artificial
// delay it produces console text for a handful of literal print shapes and
// nothing else. It never interprets Python.
package mockexec

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"pytutor/internal/trace"
)

// Default bounds of the artificial run latency.
const (
	DefaultMinDelay = time.Second
	DefaultMaxDelay = 2 * time.Second
)

// Executor runs Output behind a uniformly random delay in [MinDelay, MaxDelay].
// The zero value uses the default bounds, time.Sleep and math/rand/v2.
type Executor struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	// Sleep blocks for d. Tests replace it with a fake clock.
	Sleep func(d time.Duration)
	// Float64 returns a number in [0, 1).
	Float64 func() float64
}

// Result is what an asynchronous run resolves to.
type Result struct {
	Output string
	Delay  time.Duration
	Err    error
}

// New returns an Executor with the given delay bounds. Non-positive or
// inverted bounds fall back to the defaults.
func New(minDelay, maxDelay time.Duration) *Executor {
	return &Executor{MinDelay: minDelay, MaxDelay: maxDelay}
}

func (e *Executor) bounds() (time.Duration, time.Duration) {
	lo, hi := e.MinDelay, e.MaxDelay
	if lo <= 0 || hi <= 0 || hi < lo {
		return DefaultMinDelay, DefaultMaxDelay
	}
	return lo, hi
}

// Delay draws the latency of the next run.
func (e *Executor) Delay() time.Duration {
	lo, hi := e.bounds()
	rnd := e.Float64
	if rnd == nil {
		rnd = rand.Float64
	}
	return lo + time.Duration(rnd()*float64(hi-lo))
}

// Execute waits for the artificial delay, then returns the program output.
// The delay always runs to completion; ctx only carries the tracer.
// A panic while producing the output is returned as an error.
func (e *Executor) Execute(ctx context.Context, src string) (string, error) {
	res := e.run(ctx, src)
	return res.Output, res.Err
}

// Start runs Execute on its own goroutine. The channel receives exactly one
// Result and is then closed.
func (e *Executor) Start(ctx context.Context, src string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- e.run(ctx, src)
	}()
	return ch
}

func (e *Executor) run(ctx context.Context, src string) (res Result) {
	_, span := trace.StartSpan(ctx, trace.ScopePass, "run")
	defer func() {
		if r := recover(); r != nil {
			res = Result{Delay: res.Delay, Err: fmt.Errorf("mock execution failed: %v", r)}
			span.End("panic")
			return
		}
		span.Attr("delay", res.Delay.String()).End("")
	}()

	res.Delay = e.Delay()
	sleep := e.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(res.Delay)

	res.Output = Output(src)
	return res
}
