package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pytutor/internal/logging"
	"pytutor/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "pytutor",
	Short: "Heuristic Python error detector for learners",
	Long: `pytutor scans beginner Python code line by line for likely mistakes,
explains each error kind with a before/after example and simulates running
the program once the code looks clean.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareCommand,
}

// errFindings makes the process exit with status 1 after diagnostics were
// printed; cobra does not print it.
var errFindings = errors.New("diagnostics found")

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off), default from pytutor.toml or auto")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().String("config", "", "path to pytutor.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	finishCommand()
	if err != nil {
		os.Exit(1)
	}
}

// prepareCommand runs before every subcommand: logger, config, colour and
// tracing, in that order.
func prepareCommand(cmd *cobra.Command, _ []string) error {
	debug, err := cmd.Root().PersistentFlags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("failed to get debug flag: %w", err)
	}
	if err := logging.Init(debug); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	appConfig = cfg
	if cfg.Path != "" {
		logging.Logger.Debugw("loaded config", "path", cfg.Path)
	}

	if err := applyColorMode(cmd); err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	return nil
}

func finishCommand() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
	logging.Sync()
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth is the width of stdout, or fallback when it is not a terminal.
func terminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
