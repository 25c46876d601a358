// Package detect flags likely Python mistakes with a fixed battery of
// line-oriented regex heuristics.
//
// It is deliberately not a parser: there is no tokenizer, no AST and no scope
// tracking beyond "names defined on earlier lines". False positives and false
// negatives of the individual checks are expected behaviour and tests pin
// them down.
//
// A detection pass is a pure function of the input text. Every piece of
// context a check needs (the defined-name set, the surrounding lines) is
// rebuilt from the buffer on each call; nothing is cached between calls.
package detect

import (
	"strings"

	"pytutor/internal/diag"
	"pytutor/internal/source"
)

// lineContext is what every check sees for one non-blank, non-comment line.
type lineContext struct {
	buf     source.Buffer
	index   int    // 0-based index into buf.Lines
	number  uint32 // 1-based line number
	line    string // raw line
	trimmed string
	defined nameSet // names defined on lines before this one
}

type check struct {
	name string
	run  func(lc *lineContext, r diag.Reporter)
}

// checks run in this order for every line; all findings are kept.
var checks = []check{
	{"missing-colon", checkMissingColon},
	{"unmatched-brackets", checkBrackets},
	{"indent-after-colon", checkIndentAfterColon},
	{"undefined-name", checkUndefinedNames},
	{"str-plus-int", checkStringPlusInt},
	{"int-literal", checkIntLiteral},
	{"large-index", checkLargeIndex},
	{"dict-subscript", checkDictSubscript},
	{"division-by-zero", checkDivisionByZero},
	{"int-append", checkIntAppend},
	{"import-typo", checkImportTypo},
	{"self-recursion", checkSelfRecursion},
	{"false-assertion", checkFalseAssertion},
	{"print-before-assign", checkPrintBeforeAssign},
}

// Checks returns the check names in execution order.
func Checks() []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.name
	}
	return out
}

// Detect runs one detection pass over src and returns the findings in order:
// lines top to bottom, checks in fixed order within a line.
func Detect(src string) []diag.Diagnostic {
	var r diag.SliceReporter
	DetectBuffer(source.SplitLines(src), &r)
	return r.Items
}

// DetectBuffer runs a detection pass and streams findings into r.
func DetectBuffer(buf source.Buffer, r diag.Reporter) {
	if r == nil {
		r = diag.NopReporter{}
	}
	defined := newNameSet()
	for i, line := range buf.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			lc := &lineContext{
				buf:     buf,
				index:   i,
				number:  source.LineNumber(i),
				line:    line,
				trimmed: trimmed,
				defined: defined,
			}
			for _, c := range checks {
				c.run(lc, r)
			}
		}
		// every earlier line counts, comments and blanks included
		collectDefinitions(line, defined)
	}
}
