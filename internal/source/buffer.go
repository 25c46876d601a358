package source

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Buffer is the editor text split into lines in visual order.
// It is recomputed from the text on every use and never persisted.
type Buffer struct {
	Lines []string
}

// SplitLines splits text on '\n' only. A trailing newline yields a final
// empty line and '\r' is kept as part of the line it ends.
func SplitLines(text string) Buffer {
	return Buffer{Lines: strings.Split(text, "\n")}
}

// LineCount returns the number of lines, including a trailing empty one.
func (b Buffer) LineCount() int {
	return len(b.Lines)
}

// Line returns the 1-based line n, or "" when n is out of range.
func (b Buffer) Line(n int) string {
	if n < 1 || n > len(b.Lines) {
		return ""
	}
	return b.Lines[n-1]
}

// LineNumber converts a 0-based line index into a 1-based line number.
func LineNumber(index int) uint32 {
	n, err := safecast.Conv[uint32](index + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return n
}
