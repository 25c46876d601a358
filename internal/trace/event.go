package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Scope is the granularity of an event. A level records every scope up to
// its own value.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command or language server request
	ScopePass                     // one detect or run over a buffer
	ScopeFile                     // one file of a directory diagnosis
	ScopeFinding                  // one diagnostic
)

var scopeNames = [...]string{"", "command", "pass", "file", "finding"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && s != 0 {
		return scopeNames[s]
	}
	return "unknown"
}

// Kind tells span boundaries apart from single marks.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindMark
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindMark:
		return "mark"
	}
	return "unknown"
}

// Event is one trace record. Span is 0 for marks; Parent is 0 at the root.
type Event struct {
	Seq     uint64
	Time    time.Time
	Kind    Kind
	Scope   Scope
	Span    uint64
	Parent  uint64
	Name    string
	Detail  string
	Elapsed time.Duration // set on KindEnd
	Attrs   map[string]string
}

// Format selects the encoding of dumped or streamed events.
type Format uint8

const (
	FormatText Format = iota
	FormatNDJSON
)

// FormatForPath picks NDJSON for .ndjson and .jsonl files, text otherwise.
func FormatForPath(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// Encode renders ev as one line ending in a newline.
func (ev *Event) Encode(f Format) []byte {
	if f == FormatNDJSON {
		return ev.encodeJSON()
	}
	return ev.encodeText()
}

type jsonEvent struct {
	Seq       uint64            `json:"seq"`
	Time      string            `json:"time"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	Span      uint64            `json:"span,omitempty"`
	Parent    uint64            `json:"parent,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedMS float64           `json:"elapsed_ms,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func (ev *Event) encodeJSON() []byte {
	data, err := json.Marshal(jsonEvent{
		Seq:       ev.Seq,
		Time:      ev.Time.Format(time.RFC3339Nano),
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedMS: float64(ev.Elapsed.Microseconds()) / 1000,
		Attrs:     ev.Attrs,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// encodeText renders "#12 end pass detect (ok) 1.20ms lines=3".
func (ev *Event) encodeText() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-5d %-5s %-7s %s", ev.Seq, ev.Kind, ev.Scope, ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&b, " (%s)", ev.Detail)
	}
	if ev.Kind == KindEnd {
		fmt.Fprintf(&b, " %.2fms", float64(ev.Elapsed.Microseconds())/1000)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Attrs)) {
		fmt.Fprintf(&b, " %s=%s", k, ev.Attrs[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
