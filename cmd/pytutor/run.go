package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pytutor/internal/diagfmt"
	"pytutor/internal/logging"
	"pytutor/internal/mockexec"
	"pytutor/internal/observ"
	"pytutor/internal/session"
	"pytutor/internal/source"
	"pytutor/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.py|->",
	Short: "Simulate running a Python file once it has no detected errors",
	Long: `Detect errors in the file first; when the list is empty, produce the
simulated program output after a short delay. The output is a mock: only
print() of a literal, of simple integer arithmetic or of a variable is
understood.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("force", false, "run even when errors were detected")
	runCmd.Flags().String("ui", "auto", "show a spinner while running (auto|on|off)")
	runCmd.Flags().Bool("copy", false, "copy the output to the clipboard")
	runCmd.Flags().Duration("min-delay", 0, "minimum simulated run time, default from pytutor.toml or 1s")
	runCmd.Flags().Duration("max-delay", 0, "maximum simulated run time, default from pytutor.toml or 2s")
}

func runRun(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	copyOut, err := cmd.Flags().GetBool("copy")
	if err != nil {
		return fmt.Errorf("failed to get copy flag: %w", err)
	}
	minDelay, maxDelay, err := delayBounds(cmd)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	text, err := readProgram(cmd, args[0])
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	sess := session.New(mockexec.New(minDelay, maxDelay))
	timer.Measure("detect", func() string {
		return fmt.Sprintf("%d findings", len(sess.Update(cmd.Context(), text)))
	})

	if errs := sess.Errors(); len(errs) > 0 {
		if err := diagfmt.Short(cmd.ErrOrStderr(), errs); err != nil {
			return err
		}
		if !force {
			return session.ErrHasErrors
		}
	}

	run := sess.Run
	if force {
		run = sess.ForceRun
	}

	var output string
	timer.Measure("run", func() string {
		if mode.enabled(quiet(cmd)) {
			output, err = runWithSpinner(cmd.Context(), run)
		} else {
			output, err = run(cmd.Context())
		}
		return ""
	})
	if showTimings {
		defer fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	if copyOut {
		if err := clipboard.WriteAll(output); err != nil {
			logging.Logger.Warnw("failed to copy output", "error", err)
		} else if !quiet(cmd) {
			fmt.Fprintln(cmd.ErrOrStderr(), "output copied to clipboard")
		}
	}
	return nil
}

func delayBounds(cmd *cobra.Command) (time.Duration, time.Duration, error) {
	minDelay, err := cmd.Flags().GetDuration("min-delay")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get min-delay flag: %w", err)
	}
	maxDelay, err := cmd.Flags().GetDuration("max-delay")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get max-delay flag: %w", err)
	}
	if !cmd.Flags().Changed("min-delay") {
		minDelay = appConfig.Run.MinDelay.Duration
	}
	if !cmd.Flags().Changed("max-delay") {
		maxDelay = appConfig.Run.MaxDelay.Duration
	}
	if minDelay < 0 || maxDelay < minDelay {
		return 0, 0, fmt.Errorf("invalid delay range %v..%v", minDelay, maxDelay)
	}
	return minDelay, maxDelay, nil
}

// readProgram loads a file the way the detector's file loader does, or stdin
// for "-".
func readProgram(cmd *cobra.Command, target string) (string, error) {
	if target == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(target)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", target, err)
	}
	return fileSet.Get(id).Text(), nil
}

// runWithSpinner shows the run model on stderr until run returns.
func runWithSpinner(ctx context.Context, run func(context.Context) (string, error)) (string, error) {
	results := make(chan mockexec.Result, 1)
	go func() {
		output, err := run(ctx)
		results <- mockexec.Result{Output: output, Err: err}
		close(results)
	}()

	program := tea.NewProgram(ui.NewRunModel("running...", results), tea.WithOutput(os.Stderr), tea.WithInput(nil))
	final, uiErr := program.Run()
	if res, ok := ui.RunResult(final); ok {
		return res.Output, res.Err
	}
	// the view was interrupted; wait for the run itself
	res, ok := <-results
	if !ok {
		return "", uiErr
	}
	return res.Output, res.Err
}
