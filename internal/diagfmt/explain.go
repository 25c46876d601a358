package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

// ExplainOpts configures the knowledge-base card.
type ExplainOpts struct {
	Width int // card width including the border, 0 - fit content
}

// ExplainCard renders the tooltip card for kind: definition, cause, fix and
// the before/after examples, kept verbatim. ok is false for an unknown kind.
func ExplainCard(w io.Writer, kind string, opts ExplainOpts) (ok bool, err error) {
	info, found := kb.Lookup(kind)
	if !found {
		return false, nil
	}
	r := lipgloss.NewRenderer(w)

	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	label := r.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	code := r.NewStyle().Foreground(lipgloss.Color("3")).PaddingLeft(2)
	card := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)

	inner := 0
	if opts.Width > 0 {
		// border and padding take two columns on each side
		inner = max(opts.Width-4, 20)
		card = card.Width(inner + 2)
	}

	var b strings.Builder
	b.WriteString(title.Render(kind))
	b.WriteString("\n\n")
	section := func(name, text string) {
		b.WriteString(label.Render(name))
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	section("Definition", info.Definition)
	b.WriteString("\n")
	section("Common cause", info.Cause)
	b.WriteString("\n")
	section("How to fix", info.Solution)
	b.WriteString("\n")
	b.WriteString(label.Render("Before"))
	b.WriteString("\n")
	b.WriteString(code.Render(clipLines(info.ExampleBefore, inner-2)))
	b.WriteString("\n")
	b.WriteString(label.Render("After"))
	b.WriteString("\n")
	b.WriteString(code.Render(clipLines(info.ExampleAfter, inner-2)))

	_, err = fmt.Fprintln(w, card.Render(b.String()))
	return true, err
}

// clipLines truncates each line of an example so code is never re-wrapped.
func clipLines(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = runewidth.Truncate(l, width, "…")
	}
	return strings.Join(lines, "\n")
}

// Tooltip is the plain-text hover form used by the language server.
func Tooltip(d diag.Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**: %s\n", d.Kind, d.Message)
	if d.Info == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\n%s\n\n**Common cause:** %s\n\n**How to fix:** %s\n", d.Info.Definition, d.Info.Cause, d.Info.Solution)
	fmt.Fprintf(&b, "\n```python\n# before\n%s\n```\n\n```python\n# after\n%s\n```\n", d.Info.ExampleBefore, d.Info.ExampleAfter)
	return b.String()
}
