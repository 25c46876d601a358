package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

type tracerKey struct{}
type spanKey struct{}

// WithTracer returns ctx carrying t. A nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

func parentOf(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// Span is an open begin/end pair. The zero Span records nothing, so callers
// may End and Attr it unconditionally.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
}

// StartSpan opens a span under the span in ctx and returns a context whose
// children nest under it. When the tracer does not record scope the context
// is returned unchanged.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Level().records(scope) {
		return ctx, &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parentOf(ctx),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Seq:    seqCounter.Add(1),
		Time:   s.started,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   name,
	})
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// Attr attaches key=value to the end event.
func (s *Span) Attr(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End closes the span with an optional outcome and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Seq:     seqCounter.Add(1),
		Time:    now,
		Kind:    KindEnd,
		Scope:   s.scope,
		Span:    s.id,
		Parent:  s.parent,
		Name:    s.name,
		Detail:  detail,
		Elapsed: elapsed,
		Attrs:   s.attrs,
	})
	return elapsed
}

// ID is 0 for a span that records nothing.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Mark records an instant event under the span in ctx.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().records(scope) {
		return
	}
	t.Emit(&Event{
		Seq:    seqCounter.Add(1),
		Time:   time.Now(),
		Kind:   KindMark,
		Scope:  scope,
		Parent: parentOf(ctx),
		Name:   name,
		Detail: detail,
	})
}
