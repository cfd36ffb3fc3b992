// jitcheck runs the norn test corpus under the JIT and the interpreter,
// checks both outputs against golden files and reports how much faster the
// JIT was.
//
// Usage:
//
//	jitcheck                      # ./norn over test/, both modes
//	jitcheck -runtime build/norn corpus/
//	jitcheck -mode baseline -run closures
//	jitcheck -timeout 30s -diff
//
// Exit status is 0 when every test passed, 1 when any test failed and 2 for
// usage, configuration or discovery errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/dkoosis/jitcheck/internal/config"
	"github.com/dkoosis/jitcheck/internal/history"
	"github.com/dkoosis/jitcheck/internal/loadprobe"
	"github.com/dkoosis/jitcheck/internal/logging"
	"github.com/dkoosis/jitcheck/internal/version"
	"github.com/dkoosis/jitcheck/pkg/corpus"
	"github.com/dkoosis/jitcheck/pkg/harness"
	"github.com/dkoosis/jitcheck/pkg/render"
	"github.com/dkoosis/jitcheck/pkg/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"runtime":        "runtime",
	"root":           "root",
	"mode":           "mode",
	"nojit-flag":     "nojit_flag",
	"timeout":        "timeout",
	"input-ext":      "input_ext",
	"check-stderr":   "check_stderr",
	"diff":           "diff",
	"theme":          "theme",
	"no-color":       "no_color",
	"quiet":          "quiet",
	"history":        "history",
	"load-threshold": "load_threshold",
	"debug":          "debug",
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli, opts, code := parseFlags(args, stderr)
	if code >= 0 {
		return code
	}

	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if opts.writeConfig {
		return writeConfig(cli.ConfigPath, stdout, stderr)
	}

	cfg, err := config.Resolve(cli)
	if err != nil {
		fmt.Fprintf(stderr, "jitcheck: %v\n", err)
		return harness.ExitError
	}

	level := "warn"
	if cfg.Debug {
		level = "debug"
	}
	logger := logging.SetupLogger(stderr, level)
	logger.Debug("resolved configuration",
		slog.String("config", cfg.ConfigPath),
		slog.String("runtime", cfg.Runtime),
		slog.String("root", cfg.Root),
		slog.String("mode", cfg.Mode),
		slog.Duration("timeout", cfg.Timeout),
		slog.Any("sources", cfg.Sources))

	rn := runner.New(cfg.Runtime)
	rn.NoJITFlag = cfg.NoJITFlag
	rn.Timeout = cfg.Timeout
	rn.Logger = logging.WithComponent(logger, "runner")
	if err := rn.Check(); err != nil {
		logger.Warn("runtime not found, every test will fail to launch", slog.String("error", err.Error()))
	}

	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			fmt.Fprintf(stderr, "jitcheck: %v\n", err)
			return harness.ExitError
		}
		defer store.Close()
	}

	theme := newTheme(cfg, stdout)
	reporter := render.NewReporter(stdout, theme)
	reporter.ShowDiff = cfg.ShowDiff

	h := harness.New(harness.Options{
		Root:        cfg.Root,
		Corpus:      corpus.Options{InputExt: cfg.InputExt, Filter: opts.filter},
		Runner:      rn,
		Modes:       modes(cfg.Mode),
		Reporter:    reporter,
		CheckStderr: cfg.CheckStderr,
		History:     store,
		Probe:       loadprobe.New(cfg.LoadThreshold, logging.WithComponent(logger, "loadprobe")),
		Logger:      logging.WithComponent(logger, "harness"),
	})

	totals, err := h.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "jitcheck: interrupted")
		} else {
			fmt.Fprintf(stderr, "jitcheck: %v\n", err)
		}
		return harness.ExitError
	}

	if !cfg.Quiet {
		fmt.Fprintln(stdout)
		fmt.Fprint(stdout, render.NewTerminal(theme, termWidth(stdout)).Render(harness.Patterns(totals)))
	}
	return totals.ExitCode()
}

// cliOptions are the flags that are not config settings.
type cliOptions struct {
	filter      string
	version     bool
	writeConfig bool
}

// parseFlags returns (flags, options, -1) on success; otherwise an exit code.
func parseFlags(args []string, stderr io.Writer) (config.CliFlags, cliOptions, int) {
	def := config.Defaults()
	var v config.FileConfig
	var opts cliOptions
	var cli config.CliFlags

	fs := flag.NewFlagSet("jitcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jitcheck [flags] [test-root]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&v.Runtime, "runtime", def.Runtime, "Path to the norn runtime executable")
	fs.StringVar(&v.Root, "root", def.Root, "Directory searched recursively for tests")
	fs.StringVar(&v.Mode, "mode", def.Mode, "Modes to run: both, accelerated, baseline")
	fs.StringVar(&v.NoJITFlag, "nojit-flag", def.NoJITFlag, "Runtime flag that disables the JIT")
	timeout := fs.Duration("timeout", 0, "Kill a runtime invocation after this long (0 waits forever)")
	fs.StringVar(&v.InputExt, "input-ext", def.InputExt, "Extension of test scripts")
	fs.BoolVar(&v.CheckStderr, "check-stderr", false, "Also compare stderr with the .err file when present")
	fs.BoolVar(&v.Diff, "diff", false, "Show a diff under failed tests")
	fs.StringVar(&v.Theme, "theme", def.Theme, "Theme: default, orca, mono")
	fs.BoolVar(&v.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&v.Quiet, "quiet", false, "Skip the end-of-run summary")
	fs.StringVar(&v.History, "history", "", "bbolt file recording speedup ratios between runs")
	fs.Float64Var(&v.LoadThreshold, "load-threshold", 0, "Per-CPU load above which ratios are marked approximate (0 disables)")
	fs.BoolVar(&v.Debug, "debug", false, "Log diagnostics to stderr")
	fs.StringVar(&cli.ConfigPath, "config", "", "Config file (default ./"+config.FileName+")")
	fs.StringVar(&opts.filter, "run", "", "Only run tests whose path contains this string")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "Write a default config file and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli, opts, 0
		}
		return cli, opts, harness.ExitError
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			set[key] = true
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		v.Root = fs.Arg(0)
		set["root"] = true
	default:
		fmt.Fprintf(stderr, "jitcheck: expected at most one test root, got %d\n", fs.NArg())
		return cli, opts, harness.ExitError
	}

	v.Timeout = timeout.String()
	cli.Values = v
	cli.Set = set
	return cli, opts, -1
}

func writeConfig(path string, stdout, stderr io.Writer) int {
	if path == "" {
		path = config.FileName
	}
	if err := config.WriteDefault(path); err != nil {
		fmt.Fprintf(stderr, "jitcheck: %v\n", err)
		return harness.ExitError
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return 0
}

func modes(mode string) []runner.Mode {
	switch mode {
	case config.ModeAccelerated:
		return []runner.Mode{runner.Accelerated}
	case config.ModeBaseline:
		return []runner.Mode{runner.Baseline}
	default:
		return []runner.Mode{runner.Accelerated, runner.Baseline}
	}
}

// newTheme binds the configured theme to a renderer for w. Color follows the
// terminal capabilities of w unless disabled.
func newTheme(cfg *config.Resolved, w io.Writer) render.Theme {
	r := lipgloss.NewRenderer(w)
	if cfg.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return render.ThemeByName(cfg.Theme, r)
}

// termWidth returns the terminal width of w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}
