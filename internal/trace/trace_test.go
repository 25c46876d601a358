package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelRecords(t *testing.T) {
	if !LevelPhase.records(ScopePass) || LevelPhase.records(ScopeFile) {
		t.Fatalf("phase level should stop at pass scope")
	}
	if !LevelDetail.records(ScopeFile) || LevelDetail.records(ScopeFinding) {
		t.Fatalf("detail level should stop at file scope")
	}
	if !LevelDebug.records(ScopeFinding) {
		t.Fatalf("debug level should record findings")
	}
	if LevelOff.records(ScopeCommand) {
		t.Fatalf("off records nothing")
	}
}

func TestLevelsReachTracers(t *testing.T) {
	debug := NewRingTracer(8, LevelDebug)
	Mark(WithTracer(context.Background(), debug), ScopeFinding, "NameError", "line 2")
	if n := len(debug.Snapshot()); n != 1 {
		t.Fatalf("debug level recorded %d findings, want 1", n)
	}

	phase := NewRingTracer(8, LevelPhase)
	ctx := WithTracer(context.Background(), phase)
	ctx, cmd := StartSpan(ctx, ScopeCommand, "run")
	_, pass := StartSpan(ctx, ScopePass, "detect")
	Mark(ctx, ScopeFinding, "NameError", "")
	pass.End("")
	cmd.End("")
	if n := len(phase.Snapshot()); n != 4 {
		t.Fatalf("phase level recorded %d events, want command and pass spans only", n)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	for _, name := range []string{"a", "b", "c"} {
		Mark(ctx, ScopeFinding, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	ctx, span := StartSpan(ctx, ScopePass, "detect")
	_, file := StartSpan(ctx, ScopeFile, "file:a.py")
	file.End("")
	span.Attr("lines", "3").End("ok")

	out := buf.String()
	if !strings.Contains(out, "begin pass    detect") {
		t.Fatalf("missing begin line:\n%s", out)
	}
	if !strings.Contains(out, "end   pass    detect (ok)") || !strings.Contains(out, "lines=3") {
		t.Fatalf("missing end line:\n%s", out)
	}
	if strings.Contains(out, "a.py") {
		t.Fatalf("file scope must be filtered at phase level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))
	Mark(ctx, ScopeFinding, "SyntaxError", "line 1")
	out := buf.String()
	if !strings.Contains(out, `"name":"SyntaxError"`) || !strings.Contains(out, `"scope":"finding"`) {
		t.Fatalf("unexpected ndjson output: %s", out)
	}
}

func TestStartSpanNestsUnderParent(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := StartSpan(ctx, ScopeCommand, "diag")
	ictx, inner := StartSpan(ctx, ScopePass, "detect")
	Mark(ictx, ScopeFinding, "NameError", "")
	inner.End("")
	outer.End("")

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	if snap[1].Parent != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", snap[1].Parent, outer.ID())
	}
	if snap[2].Kind != KindMark || snap[2].Parent != inner.ID() {
		t.Fatalf("finding should sit under the detect span: %+v", snap[2])
	}
	if snap[4].Kind != KindEnd || snap[4].Span != outer.ID() {
		t.Fatalf("last event should close the command span: %+v", snap[4])
	}
}

func TestDisabledSpanIsInert(t *testing.T) {
	ctx := context.Background()
	got, span := StartSpan(ctx, ScopeCommand, "diag")
	if got != ctx || span.ID() != 0 {
		t.Fatalf("expected an inert span without a tracer")
	}
	if d := span.Attr("k", "v").End(""); d != 0 {
		t.Fatalf("inert span reported duration %v", d)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("expected Nop, got %T err=%v", tr, err)
	}
}

func TestFindRing(t *testing.T) {
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := FindRing(tr); !ok {
		t.Fatal("expected a ring inside the both-mode tracer")
	}
	if _, ok := FindRing(Nop); ok {
		t.Fatal("nop tracer has no ring")
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("run.ndjson") != FormatNDJSON || FormatForPath("run.jsonl") != FormatNDJSON {
		t.Fatal("json line suffixes should select NDJSON")
	}
	if FormatForPath("-") != FormatText {
		t.Fatal("stderr should get text")
	}
}
