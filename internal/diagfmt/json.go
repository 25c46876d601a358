package diagfmt

import (
	"encoding/json"
	"io"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

// LocationJSON points at a whole source line. Line 0 means the whole file.
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line"`
}

// DiagnosticJSON is one finding.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Info     *kb.Info     `json:"info,omitempty"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// BuildDiagnosticsOutput assembles the JSON structure without encoding it.
// Count is the total number of findings even when opts.Max cuts the list.
func BuildDiagnosticsOutput(entries []Entry, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0)}
	for _, e := range entries {
		for _, d := range e.Items {
			out.Count++
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Truncated = true
				continue
			}
			out.Diagnostics = append(out.Diagnostics, toJSON(e.Path, d, opts.IncludeInfo))
		}
	}
	return out
}

func toJSON(path string, d diag.Diagnostic, includeInfo bool) DiagnosticJSON {
	dj := DiagnosticJSON{
		Severity: d.Severity.Label(),
		Kind:     string(d.Kind),
		Message:  d.Message,
		Location: LocationJSON{File: path, Line: d.Line},
	}
	if includeInfo {
		dj.Info = d.Info
	}
	return dj
}

// JSON writes the indented document followed by a newline.
func JSON(w io.Writer, entries []Entry, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(entries, opts))
}
