// Package runner invokes the norn runtime on a single test script and captures
// what the process did: stdout, stderr, exit status and wall-clock duration.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/dkoosis/jitcheck/pkg/corpus"
)

const (
	// DefaultExecutable is where the runtime is built relative to the repository root.
	DefaultExecutable = "./norn"

	// DefaultNoJITFlag forces the runtime into pure interpretation.
	DefaultNoJITFlag = "-nojit"

	// WaitDelay bounds how long Wait blocks on pipes held open by orphaned
	// grandchildren after the runtime itself has been killed.
	WaitDelay = 2 * time.Second
)

// Mode selects the runtime's execution path.
type Mode int

const (
	Accelerated Mode = iota // JIT enabled, the runtime's default
	Baseline                // interpreter only
)

func (m Mode) String() string {
	switch m {
	case Accelerated:
		return "accelerated"
	case Baseline:
		return "baseline"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Result holds what one runtime invocation produced.
type Result struct {
	Mode      Mode
	Stdout    []byte
	Stderr    []byte
	ExitCode  int // observed only; a non-zero exit is not an error
	StartedAt time.Time
	Duration  time.Duration
}

// Runner launches the runtime. The zero value is not usable; use New.
type Runner struct {
	Executable string
	NoJITFlag  string
	// Timeout kills the runtime's process group after this long. Zero waits forever.
	Timeout time.Duration
	// Env is appended to the harness environment.
	Env    []string
	Logger *slog.Logger
}

// New returns a Runner for the given runtime executable with default flags.
func New(executable string) *Runner {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Runner{Executable: executable, NoJITFlag: DefaultNoJITFlag}
}

// Args returns the runtime arguments for tc in the given mode. The mode flag,
// when present, precedes the single positional script path.
func (r *Runner) Args(tc corpus.TestCase, mode Mode) []string {
	if mode == Baseline {
		flag := r.NoJITFlag
		if flag == "" {
			flag = DefaultNoJITFlag
		}
		return []string{flag, tc.InputPath}
	}
	return []string{tc.InputPath}
}

// Check reports a LaunchError if the executable cannot be resolved.
func (r *Runner) Check() error {
	if _, err := exec.LookPath(r.Executable); err != nil {
		return &LaunchError{Executable: r.Executable, Err: err}
	}
	return nil
}

// Run executes the runtime once and blocks until it has exited and both output
// streams are drained.
//
// Error semantics:
//   - (result, nil) whenever the process ran to completion, whatever its exit code
//   - (nil, *LaunchError) when the process could not be started
//   - (result, *TimeoutError) when Timeout elapsed; the process group was killed
//     and result holds whatever was captured before that
//   - (result, ctx.Err()) when ctx was cancelled
func (r *Runner) Run(ctx context.Context, tc corpus.TestCase, mode Mode) (*Result, error) {
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := r.Args(tc, mode)
	cmd := exec.CommandContext(runCtx, r.Executable, args...)
	cmd.Env = append(os.Environ(), r.Env...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroupWithSIGKILL(cmd) }
	cmd.WaitDelay = WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := r.logger().With("test", tc.InputPath, "mode", mode.String())
	log.Debug("starting runtime", "executable", r.Executable, "args", args)

	startedAt := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Executable: r.Executable, Err: err}
	}
	waitErr := cmd.Wait()

	result := &Result{
		Mode:      mode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		ExitCode:  exitCode(waitErr),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	log.Debug("runtime exited", "exit_code", result.ExitCode, "duration", result.Duration,
		"stdout_bytes", len(result.Stdout), "stderr_bytes", len(result.Stderr))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("run %s: %w", tc.InputPath, ctxErr)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, &TimeoutError{Path: tc.InputPath, Mode: mode, Timeout: r.Timeout}
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return result, fmt.Errorf("wait for %s: %w", r.Executable, waitErr)
	}
	return result, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := getExitCodeFromError(exitErr); ok {
			return code
		}
		return 1
	}
	if isCommandNotFoundError(err) {
		return 127
	}
	return 1
}
