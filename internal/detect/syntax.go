package detect

import (
	"regexp"
	"strings"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

var reBlockHeadWithoutColon = regexp.MustCompile(`^(\s*)(if|for|while|def|class|try|except|finally|with|elif|else)\s+.*[^:]\s*$`)

// checkMissingColon: a block keyword with something after it that does not end
// in ':'. Lines with a '#' anywhere are left alone. A bare "else" or "try"
// needs trailing text to match at all.
func checkMissingColon(lc *lineContext, r diag.Reporter) {
	if strings.Contains(lc.line, "#") {
		return
	}
	if reBlockHeadWithoutColon.MatchString(lc.line) {
		diag.ReportError(r, kb.SyntaxError, lc.number, "Missing colon")
	}
}

// checkBrackets compares opening and closing bracket counts on this line only.
func checkBrackets(lc *lineContext, r diag.Reporter) {
	open, closed := 0, 0
	for i := 0; i < len(lc.line); i++ {
		switch lc.line[i] {
		case '(', '[', '{':
			open++
		case ')', ']', '}':
			closed++
		}
	}
	if open != closed {
		diag.ReportError(r, kb.SyntaxError, lc.number, "Unmatched brackets")
	}
}

// checkIndentAfterColon: the nearest non-empty line above ends with ':' and
// this line starts in column one.
func checkIndentAfterColon(lc *lineContext, r diag.Reporter) {
	if strings.HasPrefix(lc.line, " ") || strings.HasPrefix(lc.line, "\t") {
		return
	}
	for j := lc.index - 1; j >= 0; j-- {
		prev := strings.TrimSpace(lc.buf.Lines[j])
		if prev == "" {
			continue
		}
		if strings.HasSuffix(prev, ":") {
			diag.ReportError(r, kb.IndentationError, lc.number, "Expected an indented block")
		}
		return
	}
}
