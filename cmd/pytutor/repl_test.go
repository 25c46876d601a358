package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
)

type prefixRunner struct{}

func (prefixRunner) Execute(_ context.Context, src string) (string, error) {
	return "out:" + src, nil
}

func newTestRepl(t *testing.T) (*replState, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	var out bytes.Buffer
	return newReplState(prefixRunner{}, &out), &out
}

func TestReplReportsNewFindingsOnly(t *testing.T) {
	repl, out := newTestRepl(t)
	ctx := context.Background()

	repl.handle(ctx, "x = 1 / 0")
	got := out.String()
	if !strings.Contains(got, "Line 1: ZeroDivisionError: division by zero") {
		t.Fatalf("missing finding in %q", got)
	}

	out.Reset()
	repl.handle(ctx, "print(1)")
	if out.Len() != 0 {
		t.Fatalf("expected no repeated findings, got %q", out.String())
	}
	if repl.prompt() != "  3> " {
		t.Fatalf("unexpected prompt %q", repl.prompt())
	}
}

func TestReplRunIsGated(t *testing.T) {
	repl, out := newTestRepl(t)
	ctx := context.Background()

	repl.handle(ctx, "x = 1 / 0")
	out.Reset()
	repl.handle(ctx, ":run")
	if got := out.String(); got != "Error: fix the detected errors before running\n" {
		t.Fatalf("unexpected run output %q", got)
	}

	out.Reset()
	repl.handle(ctx, ":force")
	if got := out.String(); got != "out:x = 1 / 0\n" {
		t.Fatalf("unexpected forced output %q", got)
	}

	out.Reset()
	repl.handle(ctx, ":undo")
	repl.handle(ctx, "print(1)")
	repl.handle(ctx, ":run")
	if got := out.String(); got != "out:print(1)\n" {
		t.Fatalf("unexpected clean run output %q", got)
	}
}

func TestReplCommands(t *testing.T) {
	repl, out := newTestRepl(t)
	ctx := context.Background()

	repl.handle(ctx, "print('a')")
	out.Reset()
	repl.handle(ctx, ":show")
	if got := out.String(); got != "  1  print('a')\n" {
		t.Fatalf("unexpected buffer listing %q", got)
	}

	out.Reset()
	repl.handle(ctx, ":explain KeyError")
	if !strings.Contains(out.String(), "KeyError") || !strings.Contains(out.String(), "Definition") {
		t.Fatalf("unexpected card %q", out.String())
	}

	out.Reset()
	repl.handle(ctx, ":explain Nope")
	if got := out.String(); got != "unknown error kind \"Nope\"\n" {
		t.Fatalf("unexpected output %q", got)
	}

	out.Reset()
	repl.handle(ctx, ":clear")
	repl.handle(ctx, ":errors")
	if got := out.String(); got != "no errors\n" {
		t.Fatalf("unexpected output %q", got)
	}

	if !repl.handle(ctx, ":quit") {
		t.Fatal(":quit should end the loop")
	}
	if repl.handle(ctx, ":bogus") {
		t.Fatal("unknown commands keep the loop running")
	}
}
