// Package compare decides whether runtime output matches its golden file and
// how much faster the accelerated run was than the baseline.
package compare

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dkoosis/jitcheck/pkg/runner"
)

// ErrMissingGolden is returned by ReadGolden when the expected output file does not exist.
var ErrMissingGolden = errors.New("missing out file")

// ReadGolden returns the golden content at path.
func ReadGolden(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %s", ErrMissingGolden, path)
		}
		return nil, fmt.Errorf("read golden %s: %w", path, err)
	}
	return data, nil
}

// Mismatch names the first comparison that failed.
type Mismatch int

const (
	MatchOK Mismatch = iota
	MismatchAccelerated
	MismatchBaseline
	MismatchStderr
	MismatchNoResult
)

func (m Mismatch) String() string {
	switch m {
	case MatchOK:
		return "match"
	case MismatchAccelerated:
		return "accelerated output differs from golden"
	case MismatchBaseline:
		return "baseline output differs from golden"
	case MismatchStderr:
		return "stderr differs from golden"
	case MismatchNoResult:
		return "no runtime output to compare"
	default:
		return fmt.Sprintf("mismatch(%d)", int(m))
	}
}

// Ratio is the fraction of baseline time saved by the accelerated run.
// Defined is false when the baseline duration was zero.
type Ratio struct {
	Value   float64
	Defined bool
}

// SpeedupRatio computes (baseline - accelerated) / baseline. The result is at
// most 1, zero when both durations are equal, and negative when the accelerated
// run was slower.
func SpeedupRatio(accelerated, baseline time.Duration) Ratio {
	if baseline <= 0 {
		return Ratio{}
	}
	return Ratio{
		Value:   float64(baseline-accelerated) / float64(baseline),
		Defined: true,
	}
}

// Format renders the ratio with two decimals, or "n/a" when undefined.
func (r Ratio) Format() string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// Fast reports whether the accelerated run was at least as fast as the baseline.
func (r Ratio) Fast() bool {
	return r.Defined && r.Value >= 0
}

// Outcome is the verdict for one test.
type Outcome struct {
	Passed   bool
	Mismatch Mismatch
	// Ratio is set only when two runs were evaluated and they passed.
	Ratio    *Ratio
	Expected []byte
	Actual   []byte
}

// Evaluate compares one or two run results with the golden output. With two
// results (accelerated first, baseline second) both stdouts must equal the
// golden bytes, which makes all three pairwise equal.
func Evaluate(golden []byte, results ...*runner.Result) Outcome {
	switch len(results) {
	case 0:
		return Outcome{Mismatch: MismatchNoResult, Expected: golden}
	case 1:
		got := results[0]
		if !bytes.Equal(got.Stdout, golden) {
			m := MismatchAccelerated
			if got.Mode == runner.Baseline {
				m = MismatchBaseline
			}
			return Outcome{Mismatch: m, Expected: golden, Actual: got.Stdout}
		}
		return Outcome{Passed: true}
	}

	accel, base := results[0], results[1]
	switch {
	case !bytes.Equal(accel.Stdout, golden):
		return Outcome{Mismatch: MismatchAccelerated, Expected: golden, Actual: accel.Stdout}
	case !bytes.Equal(base.Stdout, golden):
		return Outcome{Mismatch: MismatchBaseline, Expected: golden, Actual: base.Stdout}
	}

	ratio := SpeedupRatio(accel.Duration, base.Duration)
	return Outcome{Passed: true, Ratio: &ratio}
}

// CheckStderr downgrades a passing outcome when any result's stderr differs
// from the golden stderr.
func CheckStderr(o Outcome, golden []byte, results ...*runner.Result) Outcome {
	if !o.Passed {
		return o
	}
	for _, r := range results {
		if !bytes.Equal(r.Stderr, golden) {
			return Outcome{Mismatch: MismatchStderr, Expected: golden, Actual: r.Stderr}
		}
	}
	return o
}

// Diff returns a line diff of want against got, prefixed "-" for golden lines
// and "+" for actual lines. It is empty when they are equal.
func Diff(want, got []byte) string {
	return cmp.Diff(splitLines(want), splitLines(got))
}

func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return strings.SplitAfter(string(b), "\n")
}
