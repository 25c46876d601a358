package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pytutor/internal/diagfmt"
	"pytutor/internal/driver"
	"pytutor/internal/logging"
	"pytutor/internal/observ"
	"pytutor/internal/source"
	"pytutor/internal/ui"
	"pytutor/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.py|directory|->",
	Short: "Detect likely Python errors in a file, a directory or stdin",
	Long: `Run the heuristic detector over a Python file, every *.py file below a
directory, or stdin when the argument is "-". Exits with status 1 when
anything was found.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "", "output format (pretty|json|sarif|short), default from pytutor.toml or pretty")
	diagCmd.Flags().Bool("explain", false, "append the knowledge-base solution to each finding")
	diagCmd.Flags().Bool("no-context", false, "do not print the offending source line")
	diagCmd.Flags().Bool("with-info", false, "include knowledge-base entries in JSON output")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0=unlimited)")
	diagCmd.Flags().Bool("disk-cache", false, "reuse results for unchanged files across runs")
	diagCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
	diagCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
}

type diagnoseFlags struct {
	format         string
	explain        bool
	context        bool
	withInfo       bool
	jobs           int
	maxDiagnostics int
	diskCache      bool
	ui             uiMode
	pathMode       diagfmt.PathMode
}

func readDiagnoseFlags(cmd *cobra.Command) (diagnoseFlags, error) {
	var f diagnoseFlags
	var err error

	if f.format, err = stringSetting(cmd, "format", appConfig.Format.Default); err != nil {
		return f, err
	}
	f.format = strings.ToLower(f.format)
	switch f.format {
	case "pretty", "json", "sarif", "short":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}

	if f.explain, err = cmd.Flags().GetBool("explain"); err != nil {
		return f, fmt.Errorf("failed to get explain flag: %w", err)
	}
	noContext, err := cmd.Flags().GetBool("no-context")
	if err != nil {
		return f, fmt.Errorf("failed to get no-context flag: %w", err)
	}
	f.context = !noContext
	if f.withInfo, err = cmd.Flags().GetBool("with-info"); err != nil {
		return f, fmt.Errorf("failed to get with-info flag: %w", err)
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.maxDiagnostics, err = intSetting(cmd, "max-diagnostics", appConfig.Detect.MaxDiagnostics); err != nil {
		return f, err
	}
	if f.diskCache, err = cmd.Flags().GetBool("disk-cache"); err != nil {
		return f, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}

	pathValue, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(pathValue)
	if !ok {
		return f, fmt.Errorf("unknown path mode: %s", pathValue)
	}
	f.pathMode = mode
	return f, nil
}

// runDiagnose executes the "diag" command. It returns errFindings after
// printing when at least one diagnostic was produced.
func runDiagnose(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	target := args[0]
	flags, err := readDiagnoseFlags(cmd)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts := driver.Options{
		MaxDiagnostics: flags.maxDiagnostics,
		Jobs:           flags.jobs,
		Logger:         logging.Named("driver"),
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	if flags.diskCache {
		cache, cacheErr := driver.OpenDiskCache("pytutor")
		if cacheErr != nil {
			logging.Logger.Warnw("disk cache disabled", "error", cacheErr)
		} else {
			opts.Cache = cache
		}
	}

	fileSet, results, err := diagnoseTarget(cmd, target, flags, opts)
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	entries := buildEntries(fileSet, results, flags.pathMode)
	out := cmd.OutOrStdout()
	stopFormat := opts.Timer.Start("format")
	if err := renderEntries(out, entries, flags); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	stopFormat(flags.format)
	if opts.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}

	if !quiet(cmd) {
		writeLimitNotices(cmd.ErrOrStderr(), entries, results)
	}

	total := 0
	for _, r := range results {
		total += r.Bag.Len()
	}
	if total == 0 {
		if !quiet(cmd) && flags.format == "pretty" {
			fmt.Fprintln(out, "no problems found")
		}
		return nil
	}
	cmd.SilenceErrors = true
	return errFindings
}

func diagnoseTarget(cmd *cobra.Command, target string, flags diagnoseFlags, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	ctx := cmd.Context()
	if target == "-" {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		fileSet, res := driver.DiagnoseSource(ctx, "<stdin>", string(text), opts)
		return fileSet, []driver.FileResult{res}, nil
	}

	st, err := os.Stat(target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		fileSet, res, err := driver.DiagnoseFile(ctx, target, opts)
		if err != nil {
			return nil, nil, err
		}
		return fileSet, []driver.FileResult{res}, nil
	}
	if flags.ui.enabled(quiet(cmd)) {
		return diagnoseDirWithUI(ctx, target, opts)
	}
	return driver.DiagnoseDir(ctx, target, opts)
}

type dirOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// diagnoseDirWithUI runs DiagnoseDir while the progress view lists files as
// they finish. The view draws on stderr so stdout stays machine-readable.
func diagnoseDirWithUI(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	files, err := driver.ListPyFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	events := make(chan ui.FileEvent, len(files))
	opts.Progress = func(_, _ int, res driver.FileResult) {
		events <- fileEvent(res)
	}
	outcomeCh := make(chan dirOutcome, 1)
	go func() {
		fileSet, results, err := driver.DiagnoseDir(ctx, dir, opts)
		outcomeCh <- dirOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("diagnosing "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

func fileEvent(res driver.FileResult) ui.FileEvent {
	ev := ui.FileEvent{Path: res.Path, Status: ui.StatusClean}
	for _, d := range res.Bag.Items() {
		if d.Line == 0 {
			ev.Status = ui.StatusFailed
			return ev
		}
	}
	if n := res.Bag.Len(); n > 0 {
		ev.Status = ui.StatusIssues
		ev.Findings = n
	}
	return ev
}

func buildEntries(fileSet *source.FileSet, results []driver.FileResult, mode diagfmt.PathMode) []diagfmt.Entry {
	entries := make([]diagfmt.Entry, 0, len(results))
	for _, r := range results {
		var file *source.File
		if fileSet != nil {
			if id, ok := fileSet.GetLatest(r.Path); ok {
				file = fileSet.Get(id)
			}
		}
		var baseDir string
		if fileSet != nil {
			baseDir = fileSet.BaseDir()
		}
		entries = append(entries, diagfmt.EntryFor(file, r.Path, baseDir, mode, r.Bag.Items()))
	}
	return entries
}

func renderEntries(w io.Writer, entries []diagfmt.Entry, flags diagnoseFlags) error {
	switch flags.format {
	case "pretty":
		return diagfmt.Pretty(w, entries, diagfmt.PrettyOpts{
			Color:   useColor,
			Context: flags.context,
			Explain: flags.explain,
			Width:   terminalWidth(0),
		})
	case "short":
		return diagfmt.ShortEntries(w, entries)
	case "json":
		return diagfmt.JSON(w, entries, diagfmt.JSONOpts{IncludeInfo: flags.withInfo || flags.explain})
	case "sarif":
		return diagfmt.Sarif(w, entries, diagfmt.SarifRunMeta{
			ToolName:       "pytutor",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown format: %s", flags.format)
	}
}

// writeLimitNotices names the files whose bag filled up, so a cut-off list is
// not mistaken for the full one. entries and results are parallel.
func writeLimitNotices(w io.Writer, entries []diagfmt.Entry, results []driver.FileResult) {
	for i, r := range results {
		if r.Bag == nil || r.Bag.Cap() <= 0 || r.Bag.Len() < r.Bag.Cap() {
			continue
		}
		fmt.Fprintf(w, "note: %s: stopped after %d diagnostics (raise --max-diagnostics to see more)\n", entries[i].Path, r.Bag.Cap())
	}
}
