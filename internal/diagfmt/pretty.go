package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"pytutor/internal/diag"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	location *color.Color
	kind     *color.Color
	gutter   *color.Color
	marker   *color.Color
	help     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		location: color.New(color.Bold),
		kind:     color.New(color.FgMagenta),
		gutter:   color.New(color.FgBlue),
		marker:   color.New(color.FgRed),
		help:     color.New(color.FgGreen),
	}
	all := []*color.Color{p.location, p.kind, p.gutter, p.marker, p.help}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes every diagnostic of every entry as
//
//	<path>:<line>: <SEV> <Kind>: <message>
//	  3 | if x > 5
//	    | ^^^^^^^^
//
// followed by "= help: <solution>" when opts.Explain is set. Line 0 findings
// (whole-file problems) have no context block.
func Pretty(w io.Writer, entries []Entry, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, e := range entries {
		for _, d := range e.Items {
			if err := prettyOne(w, e, d, opts, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyOne(w io.Writer, e Entry, d diag.Diagnostic, opts PrettyOpts, p palette) error {
	loc := e.Path
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, d.Line)
	}
	sev := p.sev[d.Severity]
	if sev == nil {
		sev = p.sev[diag.SevError]
	}
	if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.location.Sprint(loc), sev.Sprint(d.Severity.String()), p.kind.Sprint(string(d.Kind)), d.Message); err != nil {
		return err
	}

	if opts.Context && d.Line > 0 && int(d.Line) <= e.Lines.LineCount() {
		if err := writeContext(w, e.Lines.Line(int(d.Line)), d.Line, opts.Width, p); err != nil {
			return err
		}
	}

	if opts.Explain && d.Info != nil {
		if _, err := fmt.Fprintf(w, "  %s %s\n", p.help.Sprint("= help:"), d.Info.Solution); err != nil {
			return err
		}
	}
	return nil
}

// writeContext prints the source line and underlines its non-blank part.
func writeContext(w io.Writer, line string, number uint32, width int, p palette) error {
	line = strings.TrimRight(strings.ReplaceAll(line, "\t", "    "), " \r")
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	num := fmt.Sprint(number)
	pad := strings.Repeat(" ", len(num))

	indent := len(line) - len(strings.TrimLeft(line, " "))
	markLen := runewidth.StringWidth(line[indent:])
	if markLen == 0 {
		markLen = 1
	}
	_, err := fmt.Fprintf(w, " %s %s %s\n %s %s %s%s\n",
		p.gutter.Sprint(num), p.gutter.Sprint("|"), line,
		pad, p.gutter.Sprint("|"), strings.Repeat(" ", indent), p.marker.Sprint(strings.Repeat("^", markLen)))
	return err
}

// Short writes the console list form "Line N: Kind: message", one per line.
func Short(w io.Writer, items []diag.Diagnostic) error {
	for _, d := range items {
		if _, err := fmt.Fprintf(w, "Line %d: %s\n", d.Line, d.Title()); err != nil {
			return err
		}
	}
	return nil
}

// ShortEntries prefixes each console line with the entry path when there is
// more than one entry.
func ShortEntries(w io.Writer, entries []Entry) error {
	if len(entries) == 1 {
		return Short(w, entries[0].Items)
	}
	for _, e := range entries {
		for _, d := range e.Items {
			if _, err := fmt.Fprintf(w, "%s: Line %d: %s\n", e.Path, d.Line, d.Title()); err != nil {
				return err
			}
		}
	}
	return nil
}
