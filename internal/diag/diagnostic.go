package diag

import "pytutor/internal/kb"

// Diagnostic is one suspected problem on a source line.
type Diagnostic struct {
	Severity Severity
	Kind     kb.Kind
	Message  string
	Line     uint32 // 1-based
	// Info is shared with the knowledge base and nil when the kind has no entry.
	Info *kb.Info
}

// New builds a diagnostic and attaches the knowledge-base entry for kind, if any.
func New(sev Severity, kind kb.Kind, line uint32, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Kind:     kind,
		Message:  msg,
		Line:     line,
		Info:     kb.Of(kind),
	}
}

func NewError(kind kb.Kind, line uint32, msg string) Diagnostic {
	return New(SevError, kind, line, msg)
}

// Title is the console form "Kind: message".
func (d Diagnostic) Title() string {
	return string(d.Kind) + ": " + d.Message
}
