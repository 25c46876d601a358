package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"pytutor/internal/diag"
	"pytutor/internal/diagfmt"
	"pytutor/internal/mockexec"
	"pytutor/internal/session"
)

const replHistoryFile = ".pytutor_history"

const replHelp = `Type Python lines to add them to the buffer. Commands:
  :run            run the buffer (refused while errors are listed)
  :force          run the buffer regardless of errors
  :errors         list the current errors
  :explain KIND   show the card for an error kind
  :show           print the buffer with line numbers
  :undo           drop the last line
  :clear          empty the buffer
  :quit           leave`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Edit a Python buffer line by line with live error detection",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	repl := newReplState(mockexec.New(appConfig.Run.MinDelay.Duration, appConfig.Run.MaxDelay.Duration), out)
	fmt.Fprintln(out, "pytutor repl, :help for commands")
	for {
		line, err := ln.Prompt(repl.prompt())
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if repl.handle(cmd.Context(), line) {
			return nil
		}
	}
}

// replState is the line buffer behind the REPL; it does not touch the
// terminal so it can be driven directly.
type replState struct {
	sess  *session.Session
	lines []string
	out   io.Writer
	prev  []diag.Diagnostic
}

func newReplState(runner session.Runner, out io.Writer) *replState {
	return &replState{sess: session.New(runner), out: out}
}

func (r *replState) prompt() string {
	return fmt.Sprintf("%3d> ", len(r.lines)+1)
}

// handle processes one input line and reports whether the REPL should exit.
func (r *replState) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		r.lines = append(r.lines, line)
		r.refresh(ctx)
		return false
	}

	command, arg, _ := strings.Cut(trimmed, " ")
	switch command {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(r.out, replHelp)
	case ":run":
		r.run(ctx, r.sess.Run)
	case ":force":
		r.run(ctx, r.sess.ForceRun)
	case ":errors":
		if len(r.prev) == 0 {
			fmt.Fprintln(r.out, "no errors")
		} else {
			_ = diagfmt.Short(r.out, r.prev)
		}
	case ":explain":
		kind := strings.TrimSpace(arg)
		if ok, _ := diagfmt.ExplainCard(r.out, kind, diagfmt.ExplainOpts{}); !ok {
			fmt.Fprintf(r.out, "unknown error kind %q\n", kind)
		}
	case ":show":
		for i, l := range r.lines {
			fmt.Fprintf(r.out, "%3d  %s\n", i+1, l)
		}
	case ":undo":
		if len(r.lines) > 0 {
			r.lines = r.lines[:len(r.lines)-1]
			r.refresh(ctx)
		}
	case ":clear":
		r.lines = nil
		r.refresh(ctx)
	default:
		fmt.Fprintf(r.out, "unknown command %s, :help lists commands\n", command)
	}
	return false
}

// refresh re-detects the whole buffer and prints only findings that were not
// listed after the previous line.
func (r *replState) refresh(ctx context.Context) {
	found := r.sess.Update(ctx, strings.Join(r.lines, "\n"))
	seen := make(map[string]int, len(r.prev))
	for _, d := range r.prev {
		seen[replKey(d)]++
	}
	warn := color.New(color.FgYellow)
	for _, d := range found {
		key := replKey(d)
		if seen[key] > 0 {
			seen[key]--
			continue
		}
		fmt.Fprintln(r.out, warn.Sprintf("Line %d: %s", d.Line, d.Title()))
	}
	r.prev = found
}

func replKey(d diag.Diagnostic) string {
	return fmt.Sprintf("%d|%s|%s", d.Line, d.Kind, d.Message)
}

func (r *replState) run(ctx context.Context, run func(context.Context) (string, error)) {
	output, err := run(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, output)
}
