package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"pytutor/internal/detect"
	"pytutor/internal/diag"
	"pytutor/internal/kb"
	"pytutor/internal/source"
)

func sampleEntry() Entry {
	src := "if x > 5\n    y = 10 / 0"
	return Entry{
		Path:  "lesson.py",
		Lines: source.SplitLines(src),
		Items: []diag.Diagnostic{
			diag.NewError(kb.SyntaxError, 1, "Missing colon"),
			diag.NewError(kb.ZeroDivisionError, 2, "division by zero"),
		},
	}
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, []Entry{sampleEntry()}, PrettyOpts{Context: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "lesson.py:1: ERROR SyntaxError: Missing colon\n" +
		" 1 | if x > 5\n" +
		"   | ^^^^^^^^\n" +
		"lesson.py:2: ERROR ZeroDivisionError: division by zero\n" +
		" 2 |     y = 10 / 0\n" +
		"   |     ^^^^^^^^^^\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyExplainAndWholeFile(t *testing.T) {
	e := Entry{
		Path:  "gone.py",
		Items: []diag.Diagnostic{diag.NewError(kb.FileNotFoundError, 0, "failed to load file")},
	}
	var buf bytes.Buffer
	if err := Pretty(&buf, []Entry{e}, PrettyOpts{Context: true, Explain: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "gone.py: ERROR FileNotFoundError: failed to load file\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "= help: "+kb.Of(kb.FileNotFoundError).Solution) {
		t.Fatalf("expected help line:\n%s", out)
	}
	if strings.Contains(out, "|") {
		t.Fatalf("whole-file findings have no context:\n%s", out)
	}
}

func TestPrettyTruncatesContext(t *testing.T) {
	e := Entry{
		Path:  "long.py",
		Lines: source.SplitLines("print('" + strings.Repeat("a", 50) + "' + 1)"),
		Items: []diag.Diagnostic{diag.NewError(kb.TypeError, 1, "unsupported operand type(s) for +: string and int")},
	}
	var buf bytes.Buffer
	if err := Pretty(&buf, []Entry{e}, PrettyOpts{Context: true, Width: 20}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "…") {
		t.Fatalf("expected truncated context:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, detect.Detect("x = 10 / 0")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Line 1: ZeroDivisionError: division by zero\n") {
		t.Fatalf("unexpected short output:\n%s", buf.String())
	}
}

func TestShortEntriesPrefixesPaths(t *testing.T) {
	a := Entry{Path: "a.py", Items: []diag.Diagnostic{diag.NewError(kb.KeyError, 4, "dictionary key not found")}}
	b := Entry{Path: "b.py", Items: []diag.Diagnostic{diag.NewError(kb.IndexError, 2, "list index out of range")}}
	var buf bytes.Buffer
	if err := ShortEntries(&buf, []Entry{a, b}); err != nil {
		t.Fatal(err)
	}
	want := "a.py: Line 4: KeyError: dictionary key not found\n" +
		"b.py: Line 2: IndexError: list index out of range\n"
	if buf.String() != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []Entry{sampleEntry()}, JSONOpts{Max: 1, IncludeInfo: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 1 || !out.Truncated {
		t.Fatalf("unexpected counts %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Kind != "SyntaxError" || d.Location != (LocationJSON{File: "lesson.py", Line: 1}) {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Info == nil || d.Info.Definition == "" {
		t.Fatalf("expected knowledge entry in JSON")
	}
}

func TestJSONEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Fatalf("empty output must still carry an array:\n%s", buf.String())
	}
}

func TestSarif(t *testing.T) {
	e := sampleEntry()
	e.Items = append(e.Items, diag.NewError(kb.FileNotFoundError, 0, "failed to load file"))
	log := BuildSarif([]Entry{e}, SarifRunMeta{ToolName: "pytutor", ToolVersion: "test", InvocationArgs: []string{"diag", "lesson.py"}})

	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != len(kb.Kinds()) {
		t.Fatalf("expected one rule per kind, got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}
	first := run.Results[0]
	if first.RuleID != "SyntaxError" || first.Level != "error" || first.Locations[0].PhysicalLocation.Region.StartLine != 1 {
		t.Fatalf("unexpected first result %+v", first)
	}
	if run.Results[2].Locations[0].PhysicalLocation.Region != nil {
		t.Fatalf("whole-file result must not carry a region")
	}

	var buf bytes.Buffer
	if err := Sarif(&buf, []Entry{e}, SarifRunMeta{ToolName: "pytutor"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"$schema"`) {
		t.Fatalf("missing schema:\n%s", buf.String())
	}
}

func TestExplainCard(t *testing.T) {
	var buf bytes.Buffer
	ok, err := ExplainCard(&buf, "NameError", ExplainOpts{})
	if err != nil || !ok {
		t.Fatalf("ExplainCard: ok=%v err=%v", ok, err)
	}
	out := buf.String()
	for _, want := range []string{"NameError", "Definition", "Common cause", "How to fix", "Before", "After"} {
		if !strings.Contains(out, want) {
			t.Fatalf("card is missing %q:\n%s", want, out)
		}
	}
	before := strings.Split(kb.Of(kb.NameError).ExampleBefore, "\n")
	if !strings.Contains(out, strings.TrimSpace(before[0])) {
		t.Fatalf("card is missing the example:\n%s", out)
	}
}

func TestExplainCardUnknown(t *testing.T) {
	var buf bytes.Buffer
	ok, err := ExplainCard(&buf, "NoSuchKind", ExplainOpts{})
	if ok || err != nil || buf.Len() != 0 {
		t.Fatalf("unknown kinds must print nothing: ok=%v err=%v out=%q", ok, err, buf.String())
	}
}

func TestTooltip(t *testing.T) {
	tip := Tooltip(diag.NewError(kb.KeyError, 3, "dictionary key not found"))
	if !strings.HasPrefix(tip, "**KeyError**: dictionary key not found") || !strings.Contains(tip, "```python") {
		t.Fatalf("unexpected tooltip:\n%s", tip)
	}
	bare := Tooltip(diag.Diagnostic{Kind: "Custom", Message: "m"})
	if bare != "**Custom**: m\n" {
		t.Fatalf("unexpected bare tooltip %q", bare)
	}
}
