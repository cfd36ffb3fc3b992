// Package harness runs a norn corpus end to end: discover the tests, run each
// one under the enabled modes, compare against golden output and report a
// verdict per test.
//
// Tests run strictly one at a time, and for a dual-mode run the accelerated
// invocation always finishes before the baseline one starts, so the two
// timings never compete for the host.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/jitcheck/internal/history"
	"github.com/dkoosis/jitcheck/internal/loadprobe"
	"github.com/dkoosis/jitcheck/pkg/compare"
	"github.com/dkoosis/jitcheck/pkg/corpus"
	"github.com/dkoosis/jitcheck/pkg/render"
	"github.com/dkoosis/jitcheck/pkg/runner"
)

// Exit codes of a completed run.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitError  = 2
)

// Options configures a Harness. Only Root is required.
type Options struct {
	Root   string
	Corpus corpus.Options
	Runner *runner.Runner
	// Modes lists the modes each test runs in, in order. Empty means
	// accelerated then baseline.
	Modes    []runner.Mode
	Reporter *render.Reporter
	// CheckStderr also compares stderr with the .err companion when it exists.
	CheckStderr bool
	History     *history.Store
	Probe       *loadprobe.Probe
	Logger      *slog.Logger
	Now         func() time.Time
}

// Harness executes a corpus. Create with New.
type Harness struct {
	opts Options
	log  *slog.Logger
}

// New fills the unset Options with defaults.
func New(opts Options) *Harness {
	if opts.Runner == nil {
		opts.Runner = runner.New("")
	}
	if len(opts.Modes) == 0 {
		opts.Modes = []runner.Mode{runner.Accelerated, runner.Baseline}
	}
	if opts.Reporter == nil {
		opts.Reporter = render.NewReporter(io.Discard, render.MonoTheme(nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Harness{opts: opts, log: log}
}

// Run discovers and executes every test. The returned error is non-nil only
// when discovery fails or ctx is cancelled; individual test failures are
// recorded in Totals. Totals is never nil.
func (h *Harness) Run(ctx context.Context) (*Totals, error) {
	started := h.opts.Now()
	totals := &Totals{}
	defer func() { totals.Elapsed = h.opts.Now().Sub(started) }()

	cases, err := corpus.Discover(h.opts.Root, h.opts.Corpus)
	if err != nil {
		return totals, err
	}
	h.log.Debug("discovered tests", "root", h.opts.Root, "count", len(cases), "modes", h.opts.Modes)

	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		v, err := h.runOne(ctx, tc)
		if err != nil {
			return totals, err
		}
		totals.add(v)
	}
	return totals, nil
}

// runOne produces the verdict for tc. Only cancellation of ctx is returned as
// an error.
func (h *Harness) runOne(ctx context.Context, tc corpus.TestCase) (Verdict, error) {
	rep := h.opts.Reporter
	v := Verdict{Test: tc}

	golden, err := compare.ReadGolden(tc.ExpectedOutputPath)
	if err != nil {
		if errors.Is(err, compare.ErrMissingGolden) {
			rep.Skipped(tc.ExpectedOutputPath)
			v.Status = StatusSkipped
			v.Reason = err.Error()
			return v, nil
		}
		rep.Start(tc.InputPath)
		return h.fail(v, err.Error(), nil), nil
	}

	rep.Start(tc.InputPath)

	timed := len(h.opts.Modes) > 1
	if timed {
		v.Approximate = h.opts.Probe.Busy(ctx)
	}

	results := make([]*runner.Result, 0, len(h.opts.Modes))
	for _, mode := range h.opts.Modes {
		res, err := h.opts.Runner.Run(ctx, tc, mode)
		if err != nil {
			if ctx.Err() != nil {
				rep.Failed("interrupted", nil)
				return v, err
			}
			var timeout *runner.TimeoutError
			v.TimedOut = errors.As(err, &timeout)
			return h.fail(v, err.Error(), nil), nil
		}
		results = append(results, res)
	}

	outcome := compare.Evaluate(golden, results...)
	if outcome.Passed && h.opts.CheckStderr {
		outcome = h.checkStderr(tc, outcome, results)
	}
	if !outcome.Passed {
		return h.fail(v, outcome.Mismatch.String(), &outcome), nil
	}

	v.Status = StatusPassed
	v.Ratio = outcome.Ratio
	if timed && outcome.Ratio != nil && outcome.Ratio.Defined {
		h.remember(&v)
	}
	rep.Passed(outcome.Ratio, v.Approximate)
	return v, nil
}

func (h *Harness) fail(v Verdict, reason string, outcome *compare.Outcome) Verdict {
	v.Status = StatusFailed
	v.Reason = reason
	v.Outcome = outcome
	h.opts.Reporter.Failed(reason, outcome)
	return v
}

// checkStderr applies the .err companion when one exists. A missing companion
// leaves the outcome untouched.
func (h *Harness) checkStderr(tc corpus.TestCase, o compare.Outcome, results []*runner.Result) compare.Outcome {
	golden, err := compare.ReadGolden(tc.ExpectedErrorPath)
	if err != nil {
		if !errors.Is(err, compare.ErrMissingGolden) {
			h.log.Warn("cannot read stderr golden", "path", tc.ExpectedErrorPath, "error", err)
		}
		return o
	}
	return compare.CheckStderr(o, golden, results...)
}

// remember looks up the previous ratio of v's test and stores the new one.
// Approximate ratios are shown but not recorded.
func (h *Harness) remember(v *Verdict) {
	store := h.opts.History
	if store == nil {
		return
	}
	key := historyKey(h.opts.Root, v.Test.InputPath)
	if prev, ok, err := store.Previous(key); err != nil {
		h.log.Warn("failed to read history", "test", key, "error", err)
	} else if ok {
		before := prev.Ratio
		v.Previous = &before
	}
	if v.Approximate {
		return
	}
	if err := store.Record(key, v.Ratio.Value, h.opts.Now()); err != nil {
		h.log.Warn("failed to record history", "test", key, "error", err)
	}
}

// historyKey names a test by its slash-separated path relative to the corpus
// root, so "test", "./test" and an absolute root share entries. Inputs outside
// root fall back to their cleaned path.
func historyKey(root, inputPath string) string {
	inputPath = filepath.Clean(inputPath)
	rel, err := filepath.Rel(filepath.Clean(root), inputPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(inputPath)
	}
	return filepath.ToSlash(rel)
}

// Status is the verdict category of one test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "pass"
	case StatusFailed:
		return "fail"
	case StatusSkipped:
		return "skip"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Verdict is the result of one test.
type Verdict struct {
	Test   corpus.TestCase
	Status Status
	// Reason explains a failure or skip.
	Reason  string
	Outcome *compare.Outcome
	// Ratio is set for passed dual-mode tests.
	Ratio       *compare.Ratio
	Approximate bool
	TimedOut    bool
	// Previous is the ratio recorded by an earlier run, when history is enabled.
	Previous *float64
}

// Totals aggregates the verdicts of a run, in run order.
type Totals struct {
	Verdicts []Verdict
	Passed   int
	Failed   int
	Skipped  int
	TimedOut int
	Elapsed  time.Duration
}

func (t *Totals) add(v Verdict) {
	t.Verdicts = append(t.Verdicts, v)
	switch v.Status {
	case StatusPassed:
		t.Passed++
	case StatusFailed:
		t.Failed++
		if v.TimedOut {
			t.TimedOut++
		}
	case StatusSkipped:
		t.Skipped++
	}
}

// ExitCode is 0 when no test failed and 1 otherwise. Skipped tests do not
// affect it.
func (t *Totals) ExitCode() int {
	if t.Failed > 0 {
		return ExitFailed
	}
	return ExitPassed
}
