package detect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pytutor/internal/diag"
	"pytutor/internal/kb"
)

var (
	reStrPlusInt    = regexp.MustCompile(`['"][^'"]*['"]\s*\+\s*\d+`)
	reIntPlusStr    = regexp.MustCompile(`\d+\s*\+\s*['"][^'"]*['"]`)
	reIntCall       = regexp.MustCompile(`int\s*\(\s*['"]([^'"]*)['"]\s*\)`)
	reDigitsOnly    = regexp.MustCompile(`^\d+$`)
	reLiteralIndex  = regexp.MustCompile(`\[\s*(\d+)\s*\]`)
	reStringKey     = regexp.MustCompile(`\w+\s*\[\s*['"][^'"]*['"]\s*\]`)
	reDivZeroAtEnd  = regexp.MustCompile(`/\s*0\s*$`)
	reDivZeroInside = regexp.MustCompile(`/\s*0\s*[^\d]`)
	reIntAppend     = regexp.MustCompile(`\d+\s*\.\s*append\s*\(`)
)

// suspiciousIndex is the literal subscript above which an index is assumed to
// be out of range. There is no list-size tracking behind it.
const suspiciousIndex = 10

func checkStringPlusInt(lc *lineContext, r diag.Reporter) {
	if reStrPlusInt.MatchString(lc.line) || reIntPlusStr.MatchString(lc.line) {
		diag.ReportError(r, kb.TypeError, lc.number, "unsupported operand type(s) for +: string and int")
	}
}

// checkIntLiteral looks at the first int('...') call only. An empty literal
// is not reported.
func checkIntLiteral(lc *lineContext, r diag.Reporter) {
	m := reIntCall.FindStringSubmatch(lc.line)
	if m == nil || m[1] == "" || reDigitsOnly.MatchString(m[1]) {
		return
	}
	diag.ReportError(r, kb.ValueError, lc.number, fmt.Sprintf("invalid literal for int() with base 10: '%s'", m[1]))
}

// checkLargeIndex looks at the first literal subscript only.
func checkLargeIndex(lc *lineContext, r diag.Reporter) {
	m := reLiteralIndex.FindStringSubmatch(lc.line)
	if m == nil {
		return
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	// a literal too long for uint64 is certainly past the threshold
	if err != nil || n > suspiciousIndex {
		diag.ReportError(r, kb.IndexError, lc.number, "list index out of range")
	}
}

func checkDictSubscript(lc *lineContext, r diag.Reporter) {
	if reStringKey.MatchString(lc.line) && !strings.Contains(lc.line, ".get(") {
		diag.ReportError(r, kb.KeyError, lc.number, "dictionary key not found")
	}
}

// checkDivisionByZero: '/' then a literal 0 that ends the line or is followed
// by a non-digit. "x / 0.5" is reported too.
func checkDivisionByZero(lc *lineContext, r diag.Reporter) {
	if reDivZeroAtEnd.MatchString(lc.line) || reDivZeroInside.MatchString(lc.line) {
		diag.ReportError(r, kb.ZeroDivisionError, lc.number, "division by zero")
	}
}

func checkIntAppend(lc *lineContext, r diag.Reporter) {
	if reIntAppend.MatchString(lc.line) {
		diag.ReportError(r, kb.AttributeError, lc.number, "'int' object has no attribute 'append'")
	}
}
