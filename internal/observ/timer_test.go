package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(steps ...time.Duration) func() time.Time {
	base := time.Unix(0, 0)
	return func() time.Time {
		now := base
		if len(steps) > 0 {
			base = base.Add(steps[0])
			steps = steps[1:]
		}
		return now
	}
}

func TestTimerAggregatesRepeatedPhases(t *testing.T) {
	tm := NewTimer()
	// load 2ms, then two file passes of 1ms and 3ms
	tm.now = fakeClock(2*time.Millisecond, 0, 1*time.Millisecond, 0, 3*time.Millisecond, 0)

	stop := tm.Start("load")
	stop("2 files")
	tm.Measure("file", func() string { return "" })
	tm.Measure("file", func() string { return "lesson2.py" })

	report := tm.Report()
	if len(report) != 2 || report[0].Name != "load" || report[1].Name != "file" {
		t.Fatalf("unexpected phases %+v", report)
	}
	file := report[1]
	if file.Count != 2 || file.TotalMS != 4 || file.MaxMS != 3 || file.Note != "lesson2.py" {
		t.Fatalf("unexpected file phase %+v", file)
	}

	summary := tm.Summary()
	if !strings.Contains(summary, "x2 (max 3.00 ms)") || !strings.Contains(summary, "// 2 files") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.Start("detect")("ignored")
	tm.Measure("run", func() string { return "" })
	if got := tm.Report(); len(got) != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
	if got := tm.Summary(); got != "timings:\n" {
		t.Fatalf("unexpected summary %q", got)
	}
}
