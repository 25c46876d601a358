package ui

import (
	"strings"
	"testing"

	"pytutor/internal/mockexec"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan FileEvent)
	m := NewProgressModel("diagnosing", []string{"a.py", "b.py"}, events).(*progressModel)

	m.Update(eventMsg{Path: "b.py", Status: StatusIssues, Findings: 2})
	m.Update(eventMsg{Path: "unknown.py", Status: StatusClean})
	if m.settled != 1 {
		t.Fatalf("settled = %d, want 1", m.settled)
	}
	view := m.View()
	if !strings.Contains(view, "2 issues") || !strings.Contains(view, "queued") || !strings.Contains(view, "(1/2)") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	m.Update(eventMsg{Path: "a.py", Status: StatusClean})
	m.Update(doneMsg{})
	view = m.View()
	if !m.done || !strings.Contains(view, "done: diagnosing (2/2)") || !strings.Contains(view, "clean") {
		t.Fatalf("unexpected final view:\n%s", view)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		ev   FileEvent
		want string
	}{
		{FileEvent{Status: StatusIssues, Findings: 1}, "1 issue"},
		{FileEvent{Status: StatusIssues, Findings: 3}, "3 issues"},
		{FileEvent{Status: StatusFailed}, "error"},
		{FileEvent{Status: StatusClean}, "clean"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.ev); got != tt.want {
			t.Errorf("statusLabel(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("lessons/week1/loops.py", 10); got != "lessons..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a.py", 10); got != "a.py" {
		t.Fatalf("short names stay intact, got %q", got)
	}
}

func TestRunModel(t *testing.T) {
	results := make(chan mockexec.Result, 1)
	m := NewRunModel("running lesson.py", results)
	if !strings.Contains(m.View(), "running lesson.py") {
		t.Fatalf("unexpected view %q", m.View())
	}
	if _, ok := RunResult(m); ok {
		t.Fatalf("no result before the run finishes")
	}

	m.Update(runDoneMsg{res: mockexec.Result{Output: "hi"}, ok: true})
	res, ok := RunResult(m)
	if !ok || res.Output != "hi" {
		t.Fatalf("RunResult = %+v, %v", res, ok)
	}
	if m.View() != "" {
		t.Fatalf("finished view should be empty")
	}
}
