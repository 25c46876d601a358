package diag

import "pytutor/internal/kb"

// Reporter receives diagnostics from the heuristic checks.
// Implementations: BagReporter, SliceReporter, NopReporter.
type Reporter interface {
	Report(sev Severity, kind kb.Kind, line uint32, msg string)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(sev Severity, kind kb.Kind, line uint32, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(New(sev, kind, line, msg))
}

// SliceReporter appends to an unbounded slice.
type SliceReporter struct{ Items []Diagnostic }

func (r *SliceReporter) Report(sev Severity, kind kb.Kind, line uint32, msg string) {
	r.Items = append(r.Items, New(sev, kind, line, msg))
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Severity, kb.Kind, uint32, string) {}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, kind kb.Kind, line uint32, msg string) {
	if r == nil {
		return
	}
	r.Report(SevError, kind, line, msg)
}
