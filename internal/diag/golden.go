package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files:
//
//	<severity> <Kind> <path>:<line> <message>
//
// Entries keep detection order (top to bottom, check order within a line).
func FormatGoldenDiagnostics(diags []Diagnostic, path string) string {
	if len(diags) == 0 {
		return ""
	}
	p := normalizePath(path)

	var b strings.Builder
	for i, d := range diags {
		fmt.Fprintf(&b, "%s %s %s:%d %s", d.Severity.Label(), d.Kind, p, d.Line, sanitizeMessage(d.Message))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	if path == "" {
		return "<stdin>"
	}
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
