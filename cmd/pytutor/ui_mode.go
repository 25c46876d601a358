package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the --ui setting shared by diag and run. Progress views always
// draw on stderr so stdout stays clean for pipes.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

var uiModeNames = map[string]uiMode{"": uiModeAuto, "auto": uiModeAuto, "on": uiModeOn, "off": uiModeOff}

func readUIMode(value string) (uiMode, error) {
	if m, ok := uiModeNames[strings.ToLower(strings.TrimSpace(value))]; ok {
		return m, nil
	}
	return uiModeAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// enabled resolves the mode for one invocation. --quiet wins over --ui=on;
// auto draws only when stderr is a terminal.
func (m uiMode) enabled(quiet bool) bool {
	return m.resolve(quiet, isTerminal(os.Stderr))
}

func (m uiMode) resolve(quiet, stderrIsTerminal bool) bool {
	if quiet {
		return false
	}
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return stderrIsTerminal
}
