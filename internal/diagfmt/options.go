// Package diagfmt renders detection results for terminals, tools and editors:
// a coloured pretty form, the one-line console form, JSON, SARIF and the
// knowledge-base explain card.
package diagfmt

import (
	"pytutor/internal/diag"
	"pytutor/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths as they were given.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode maps a flag value onto a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute":
		return PathModeAbsolute, true
	case "relative":
		return PathModeRelative, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// Entry is one file's findings together with the text they point into.
type Entry struct {
	Path  string
	Lines source.Buffer // empty when the file could not be loaded
	Items []diag.Diagnostic
}

// EntryFor builds an Entry from a file in fs. A nil file yields an entry
// with only the fallback path.
func EntryFor(file *source.File, fallback string, baseDir string, mode PathMode, items []diag.Diagnostic) Entry {
	if file == nil {
		return Entry{Path: fallback, Items: items}
	}
	return Entry{Path: file.FormatPath(mode.String(), baseDir), Lines: file.Buffer(), Items: items}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color   bool
	Context bool // print the offending source line under each header
	Explain bool // append the knowledge-base solution
	Width   int  // maximum width of context lines, 0 - unlimited
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max         int // truncates output, not the bag
	IncludeInfo bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
