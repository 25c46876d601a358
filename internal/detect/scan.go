package detect

import (
	"regexp"
	"strings"
)

// isSpace matches the characters of the \s class.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// indentWidth counts leading spaces and tabs, one column each.
func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

type nameSet map[string]struct{}

func newNameSet() nameSet { return make(nameSet) }

func (s nameSet) add(name string) { s[name] = struct{}{} }

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

var (
	reAssignTarget = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*=`)
	reDefName      = regexp.MustCompile(`def\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	reImportName   = regexp.MustCompile(`(?:from\s+\w+\s+)?import\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// collectDefinitions adds assignment targets, def names and imported names
// found anywhere in line.
func collectDefinitions(line string, into nameSet) {
	for _, re := range []*regexp.Regexp{reAssignTarget, reDefName, reImportName} {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			if name := strings.TrimSpace(m[1]); name != "" {
				into.add(name)
			}
		}
	}
}
