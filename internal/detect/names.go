package detect

import (
	"fmt"
	"regexp"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

var builtinNames = nameSet{
	"print": {}, "len": {}, "str": {}, "int": {}, "float": {}, "list": {},
	"dict": {}, "range": {}, "input": {}, "open": {}, "type": {},
	"isinstance": {}, "hasattr": {}, "getattr": {}, "setattr": {},
}

var reWord = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*`)

// usedNames returns identifiers directly followed by '(', '[', '.', a space
// or the end of the line, in order of appearance. Identifiers inside string
// literals are included.
func usedNames(line string) []string {
	var out []string
	for _, loc := range reWord.FindAllStringIndex(line, -1) {
		end := loc[1]
		if end < len(line) {
			switch c := line[end]; {
			case c == '(' || c == '[' || c == '.':
			case isSpace(c):
			default:
				continue
			}
		}
		out = append(out, line[loc[0]:end])
	}
	return out
}

// checkUndefinedNames reports every used name that no earlier line defines
// and that is not a known builtin. Repeats on one line are reported each time.
func checkUndefinedNames(lc *lineContext, r diag.Reporter) {
	for _, name := range usedNames(lc.line) {
		if lc.defined.has(name) || builtinNames.has(name) {
			continue
		}
		if name[0] >= '0' && name[0] <= '9' {
			continue
		}
		diag.ReportError(r, kb.NameError, lc.number, fmt.Sprintf("name '%s' is not defined", name))
	}
}
