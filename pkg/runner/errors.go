package runner

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var (
	// ErrLaunch is matched by every LaunchError.
	ErrLaunch = errors.New("runtime failed to launch")

	// ErrTimedOut is matched by every TimeoutError.
	ErrTimedOut = errors.New("runtime timed out")
)

// LaunchError reports a runtime that could not be started at all.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// IsNotFound reports whether the executable itself is missing.
func (e *LaunchError) IsNotFound() bool {
	return isCommandNotFoundError(e.Err)
}

// TimeoutError reports a runtime killed after exceeding the configured timeout.
type TimeoutError struct {
	Path    string
	Mode    Mode
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s (%s) did not finish within %s", e.Path, e.Mode, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimedOut }

// isCommandNotFoundError checks if the error indicates the executable was not found.
func isCommandNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	if strings.Contains(errStr, "executable file not found") {
		return true
	}
	if runtime.GOOS != "windows" && strings.Contains(errStr, "no such file or directory") {
		return true
	}
	return false
}
