package kb

import (
	"strings"
	"testing"
)

func TestLookupTypeError(t *testing.T) {
	info, ok := Lookup("TypeError")
	if !ok || info == nil {
		t.Fatal("expected TypeError entry")
	}
	fields := map[string]string{
		"definition":     info.Definition,
		"cause":          info.Cause,
		"solution":       info.Solution,
		"example_before": info.ExampleBefore,
		"example_after":  info.ExampleAfter,
	}
	for name, value := range fields {
		if value == "" {
			t.Errorf("field %s is empty", name)
		}
	}
}

func TestLookupMissingKind(t *testing.T) {
	info, ok := Lookup("NoSuchKind")
	if ok || info != nil {
		t.Fatalf("expected absent entry, got %+v", info)
	}
	if Of("NoSuchKind") != nil {
		t.Fatal("Of must return nil for unknown kinds")
	}
}

func TestLookupIsExactMatch(t *testing.T) {
	if _, ok := Lookup("typeerror"); ok {
		t.Fatal("lookup must be case sensitive")
	}
	if _, ok := Lookup(" TypeError"); ok {
		t.Fatal("lookup must not trim")
	}
}

func TestRequiredKindsPresent(t *testing.T) {
	required := []Kind{
		SyntaxError, IndentationError, NameError, TypeError, ValueError,
		IndexError, KeyError, ZeroDivisionError, AttributeError, ImportError,
		ModuleNotFoundError, FileNotFoundError, RuntimeError, RecursionError,
		AssertionError, UnboundLocalError, IsADirectoryError, PermissionError,
		EOFError, FloatingPointError,
	}
	for _, k := range required {
		info, ok := Lookup(string(k))
		if !ok {
			t.Errorf("missing entry for %s", k)
			continue
		}
		if info.Definition == "" || info.Solution == "" {
			t.Errorf("%s: incomplete entry %+v", k, info)
		}
	}
	if got := len(Kinds()); got != len(required) {
		t.Fatalf("expected %d kinds, got %d", len(required), got)
	}
}

func TestExamplesKeepLineBreaks(t *testing.T) {
	info := Of(ValueError)
	if info == nil {
		t.Fatal("missing ValueError")
	}
	want := "val = '123'\nif val.isdigit():\n    print(int(val))"
	if info.ExampleAfter != want {
		t.Fatalf("example mangled:\nwant %q\ngot  %q", want, info.ExampleAfter)
	}
	if !strings.Contains(Of(IndentationError).ExampleBefore, "\n") {
		t.Fatal("expected multi-line example")
	}
}

func TestLookupIsStable(t *testing.T) {
	a, _ := Lookup("KeyError")
	b, _ := Lookup("KeyError")
	if a != b {
		t.Fatal("lookup must return the shared entry")
	}
}

func TestKindsReturnsCopy(t *testing.T) {
	ks := Kinds()
	ks[0] = "Mutated"
	if Kinds()[0] != SyntaxError {
		t.Fatal("Kinds must not expose internal state")
	}
}
