package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/jitcheck/pkg/compare"
)

// Reporter writes the live, one-line-per-test report. Start is written before
// the runtime is launched and the verdict completes the same line.
type Reporter struct {
	w     io.Writer
	theme Theme
	// ShowDiff appends a golden-vs-actual diff under failed tests.
	ShowDiff bool
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer, theme Theme) *Reporter {
	return &Reporter{w: w, theme: theme}
}

// Skipped warns that a test has no golden output and will not be run.
func (r *Reporter) Skipped(missingPath string) {
	r.printf("%s\n", r.theme.Paint(StatusWarn, "warning, missing out file "+missingPath))
}

// Start marks a test as in progress.
func (r *Reporter) Start(inputPath string) {
	r.printf("running %s...", inputPath)
	if f, ok := r.w.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

// Passed completes the current line. ratio is nil for single-mode runs;
// approximate marks a ratio measured on a busy host.
func (r *Reporter) Passed(ratio *compare.Ratio, approximate bool) {
	var sb strings.Builder
	sb.WriteString(r.theme.Paint(StatusPass, "passed"))
	if ratio != nil {
		sb.WriteString(" ")
		sb.WriteString(r.FormatRatio(*ratio, approximate))
	}
	r.printf("%s\n", sb.String())
}

// Failed completes the current line and explains the failure underneath.
func (r *Reporter) Failed(reason string, outcome *compare.Outcome) {
	r.printf("%s\n", r.theme.Paint(StatusFail, "failed"))
	if reason != "" {
		r.printf("    %s\n", r.theme.Paint(StatusMuted, reason))
	}
	if !r.ShowDiff || outcome == nil || outcome.Passed {
		return
	}
	diff := compare.Diff(outcome.Expected, outcome.Actual)
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		if line == "" {
			continue
		}
		r.printf("    %s\n", r.theme.Paint(StatusMuted, line))
	}
}

// FormatRatio renders a ratio with two decimals, colored by sign.
func (r *Reporter) FormatRatio(ratio compare.Ratio, approximate bool) string {
	text := ratio.Format()
	if approximate && ratio.Defined {
		text = "~" + text
	}
	switch {
	case !ratio.Defined:
		return r.theme.Paint(StatusMuted, text)
	case ratio.Fast():
		return r.theme.Paint(StatusFast, text)
	default:
		return r.theme.Paint(StatusSlow, text)
	}
}

func (r *Reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}
