package detect

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

var commonModules = nameSet{
	"math": {}, "os": {}, "sys": {}, "json": {}, "datetime": {}, "random": {}, "time": {},
}

var (
	reImportedModule = regexp.MustCompile(`(?:from\s+(\w+)\s+import|import\s+(\w+))`)
	reAddAssertion   = regexp.MustCompile(`assert\s+(\d+)\s*\+\s*(\d+)\s*==\s*(\d+)`)
	rePrintName      = regexp.MustCompile(`print\s*\(\s*(\w+)\s*\)`)
)

// checkImportTypo treats a 'z' in the first imported module name as a typo
// unless the module is a well-known one.
func checkImportTypo(lc *lineContext, r diag.Reporter) {
	m := reImportedModule.FindStringSubmatch(lc.line)
	if m == nil {
		return
	}
	module := m[1]
	if module == "" {
		module = m[2]
	}
	if module == "" || !strings.Contains(module, "z") || commonModules.has(module) {
		return
	}
	diag.ReportError(r, kb.ModuleNotFoundError, lc.number, fmt.Sprintf("No module named '%s'", module))
}

// checkSelfRecursion matches a one-line "def name(...): ... name(" where the
// body calls the function being defined. A prefix of the defined name counts,
// so "def foo(): fo()" is reported as well.
func checkSelfRecursion(lc *lineContext, r diag.Reporter) {
	if callsItselfOnDefLine(lc.line) {
		diag.ReportError(r, kb.RecursionError, lc.number, "maximum recursion depth exceeded")
	}
}

func callsItselfOnDefLine(line string) bool {
	for from := 0; ; {
		at := strings.Index(line[from:], "def")
		if at < 0 {
			return false
		}
		at += from
		from = at + 1

		i := at + len("def")
		nameStart := skipSpaces(line, i)
		if nameStart == i {
			continue
		}
		nameEnd := nameStart
		for nameEnd < len(line) && isWordByte(line[nameEnd]) {
			nameEnd++
		}
		for end := nameEnd; end > nameStart; end-- {
			if callAfterColon(line[end:], line[nameStart:end]) {
				return true
			}
		}
	}
}

// callAfterColon reports whether rest has ':' followed by optional spaces,
// name, optional spaces and '('.
func callAfterColon(rest, name string) bool {
	for i := 0; i < len(rest); i++ {
		if rest[i] != ':' {
			continue
		}
		j := skipSpaces(rest, i+1)
		if !strings.HasPrefix(rest[j:], name) {
			continue
		}
		j = skipSpaces(rest, j+len(name))
		if j < len(rest) && rest[j] == '(' {
			return true
		}
	}
	return false
}

// checkFalseAssertion evaluates "assert A + B == C" over integer literals.
func checkFalseAssertion(lc *lineContext, r diag.Reporter) {
	m := reAddAssertion.FindStringSubmatch(lc.line)
	if m == nil {
		return
	}
	a, okA := new(big.Int).SetString(m[1], 10)
	b, okB := new(big.Int).SetString(m[2], 10)
	c, okC := new(big.Int).SetString(m[3], 10)
	if !okA || !okB || !okC {
		return
	}
	if a.Add(a, b).Cmp(c) != 0 {
		diag.ReportError(r, kb.AssertionError, lc.number, "assertion failed")
	}
}

// checkPrintBeforeAssign: print(var) inside a function body, with a later
// line of the same block containing "var =". The block runs until a line
// indented less than the print or a new def.
func checkPrintBeforeAssign(lc *lineContext, r diag.Reporter) {
	if !strings.Contains(lc.trimmed, "print(") {
		return
	}
	m := rePrintName.FindStringSubmatch(lc.trimmed)
	if m == nil {
		return
	}
	if !insideFunction(lc) {
		return
	}
	name := m[1]
	indent := indentWidth(lc.line)
	for j := lc.index + 1; j < len(lc.buf.Lines); j++ {
		later := lc.buf.Lines[j]
		trimmed := strings.TrimSpace(later)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "def ") || indentWidth(later) < indent {
			return
		}
		if strings.Contains(trimmed, name+" =") {
			diag.ReportError(r, kb.UnboundLocalError, lc.number,
				fmt.Sprintf("local variable '%s' referenced before assignment", name))
			return
		}
	}
}

// insideFunction walks upwards to the nearest def that is indented less than
// the current line. Top-level code in between ends the search.
func insideFunction(lc *lineContext) bool {
	indent := indentWidth(lc.line)
	if indent == 0 {
		return false
	}
	for j := lc.index - 1; j >= 0; j-- {
		prev := lc.buf.Lines[j]
		trimmed := strings.TrimSpace(prev)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		w := indentWidth(prev)
		if w >= indent {
			continue
		}
		if strings.HasPrefix(trimmed, "def ") {
			return true
		}
		if w == 0 {
			return false
		}
	}
	return false
}
