package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps the host's config files and JITCHECK_* variables out of the run.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range []string{
		"JITCHECK_RUNTIME", "JITCHECK_ROOT", "JITCHECK_TIMEOUT", "JITCHECK_NO_COLOR",
		"JITCHECK_DEBUG", "NO_COLOR", "CI",
	} {
		t.Setenv(name, "")
	}
}

// catRuntime is a fake norn that prints its script, except that baseline
// runs of scripts containing "jitonly" print something else.
func catRuntime(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "norn")
	script := `#!/bin/sh
if [ "$1" = "-nojit" ]; then
  shift
  if grep -q jitonly "$1"; then echo interpreted; exit 0; fi
fi
cat "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func TestRun_AllPassed(t *testing.T) {
	isolateEnv(t)
	root := writeCorpus(t, map[string]string{
		"a.norn": "one\n",
		"a.out":  "one\n",
		"b.norn": "two\n",
		"b.out":  "two\n",
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-runtime", catRuntime(t), root}, &stdout, &stderr)

	assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "a.norn...passed ")
	assert.Contains(t, out, "b.norn...passed ")
	assert.Contains(t, out, "Passed: 2")
	assert.NotContains(t, out, "\x1b[", "non-TTY output carries no ANSI codes")
}

func TestRun_FailureAndSkipSetExitCode(t *testing.T) {
	isolateEnv(t)
	root := writeCorpus(t, map[string]string{
		"a.norn":      "ok\n",
		"a.out":       "ok\n",
		"b.norn":      "jitonly\n",
		"b.out":       "jitonly\n",
		"orphan.norn": "x\n",
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-runtime", catRuntime(t), "-diff", root}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	out := stdout.String()
	assert.Contains(t, out, "b.norn...failed\n    baseline output differs from golden")
	assert.Contains(t, out, "interpreted", "diff shows the baseline output")
	assert.Contains(t, out, "warning, missing out file "+filepath.Join(root, "orphan.out"))
	assert.Contains(t, out, "Failed tests (1)")
}

func TestRun_SingleModeAndFilter(t *testing.T) {
	isolateEnv(t)
	root := writeCorpus(t, map[string]string{
		"a.norn": "ok\n",
		"a.out":  "ok\n",
		"b.norn": "jitonly\n",
		"b.out":  "jitonly\n",
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-runtime", catRuntime(t), "-mode", "accelerated", "-run", "b.norn", "-quiet", root},
		&stdout, &stderr)

	assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Equal(t, "running "+filepath.Join(root, "b.norn")+"...passed\n", stdout.String())
}

func TestRun_UsageAndConfigErrorsExitTwo(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"-bogus"}, "flag provided but not defined"},
		{"bad mode", []string{"-mode", "turbo"}, "mode must be one of"},
		{"two roots", []string{"a", "b"}, "at most one test root"},
		{"missing root", []string{"-root", "does-not-exist"}, "does-not-exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRun_VersionAndWriteConfig(t *testing.T) {
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "jitcheck "))

	stdout.Reset()
	require.Equal(t, 0, run(context.Background(), []string{"-write-config"}, &stdout, &stderr))
	assert.Equal(t, "wrote .jitcheck.yaml\n", stdout.String())
	data, err := os.ReadFile(".jitcheck.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "runtime: ./norn")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"-write-config"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "already exists")
}

func TestRun_ConfigFileSuppliesRuntime(t *testing.T) {
	isolateEnv(t)
	root := writeCorpus(t, map[string]string{"a.norn": "ok\n", "a.out": "ok\n"})
	cfg := "runtime: " + catRuntime(t) + "\nroot: " + root + "\nquiet: true\n"
	require.NoError(t, os.WriteFile(".jitcheck.yaml", []byte(cfg), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "a.norn...passed")
	assert.NotContains(t, stdout.String(), "Summary")
}

func TestRun_MissingRuntimeFailsTests(t *testing.T) {
	isolateEnv(t)
	root := writeCorpus(t, map[string]string{"a.norn": "ok\n", "a.out": "ok\n"})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-runtime", filepath.Join(t.TempDir(), "nope"), root}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "a.norn...failed")
	assert.Contains(t, stderr.String(), "runtime not found")
}
