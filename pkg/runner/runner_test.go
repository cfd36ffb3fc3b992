package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/jitcheck/pkg/corpus"
)

// fakeRuntime writes an executable shell script standing in for norn.
func fakeRuntime(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "norn")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const echoModeScript = `if [ "$1" = "-nojit" ]; then
  shift
  printf 'baseline %s\n' "$1"
else
  printf 'accelerated %s\n' "$1"
fi
printf 'diag\n' >&2
exit 3
`

func TestRunner_Args_PutsModeFlagBeforeScript(t *testing.T) {
	t.Parallel()

	r := New("norn")
	tc := corpus.NewTestCase("test/t1.norn", corpus.Options{})

	assert.Equal(t, []string{"test/t1.norn"}, r.Args(tc, Accelerated))
	assert.Equal(t, []string{"-nojit", "test/t1.norn"}, r.Args(tc, Baseline))

	r.NoJITFlag = "--nojit"
	assert.Equal(t, []string{"--nojit", "test/t1.norn"}, r.Args(tc, Baseline))
}

func TestRunner_Run_CapturesStreamsAndExitCode_When_RuntimeExitsNonZero(t *testing.T) {
	t.Parallel()

	r := New(fakeRuntime(t, echoModeScript))
	tc := corpus.NewTestCase("t1.norn", corpus.Options{})

	res, err := r.Run(context.Background(), tc, Accelerated)
	require.NoError(t, err, "a non-zero exit is not a harness error")
	assert.Equal(t, "accelerated t1.norn\n", string(res.Stdout))
	assert.Equal(t, "diag\n", string(res.Stderr))
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, Accelerated, res.Mode)
	assert.GreaterOrEqual(t, res.Duration, time.Duration(0))

	res, err = r.Run(context.Background(), tc, Baseline)
	require.NoError(t, err)
	assert.Equal(t, "baseline t1.norn\n", string(res.Stdout))
	assert.Equal(t, Baseline, res.Mode)
}

func TestRunner_Run_ReturnsLaunchError_When_ExecutableIsMissing(t *testing.T) {
	t.Parallel()

	r := New(filepath.Join(t.TempDir(), "no-such-norn"))
	tc := corpus.NewTestCase("t1.norn", corpus.Options{})

	res, err := r.Run(context.Background(), tc, Accelerated)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrLaunch)

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.True(t, launchErr.IsNotFound())

	assert.ErrorIs(t, r.Check(), ErrLaunch)
}

func TestRunner_Run_KillsRuntime_When_TimeoutElapses(t *testing.T) {
	t.Parallel()

	r := New(fakeRuntime(t, "printf 'partial\\n'\nsleep 10\n"))
	r.Timeout = 200 * time.Millisecond
	tc := corpus.NewTestCase("slow.norn", corpus.Options{})

	start := time.Now()
	res, err := r.Run(context.Background(), tc, Baseline)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimedOut)
	require.NotNil(t, res)
	assert.Equal(t, "partial\n", string(res.Stdout))
	assert.Less(t, elapsed, 5*time.Second)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, Baseline, timeoutErr.Mode)
}

func TestRunner_Run_ReturnsContextError_When_Cancelled(t *testing.T) {
	t.Parallel()

	r := New(fakeRuntime(t, "sleep 10\n"))
	tc := corpus.NewTestCase("slow.norn", corpus.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, tc, Accelerated)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTimedOut)
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "accelerated", Accelerated.String())
	assert.Equal(t, "baseline", Baseline.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
