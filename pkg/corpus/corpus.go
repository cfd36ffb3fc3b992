// Package corpus discovers norn test scripts and pairs them with their golden files.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Default file extensions of the corpus layout.
const (
	DefaultInputExt  = ".norn"
	DefaultOutputExt = ".out"
	DefaultErrorExt  = ".err"
)

// ErrDiscovery is matched by every DiscoveryError.
var ErrDiscovery = errors.New("test discovery failed")

var errNotDir = errors.New("not a directory")

// DiscoveryError reports a corpus root that cannot be walked.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover tests in %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDiscovery) hold for any DiscoveryError.
func (e *DiscoveryError) Is(target error) bool { return target == ErrDiscovery }

// TestCase associates one test input with the paths of its expected output and error files.
// The expected paths are derived from InputPath and may not exist.
type TestCase struct {
	InputPath          string
	ExpectedOutputPath string
	ExpectedErrorPath  string
}

// Options controls discovery. Zero values fall back to the defaults above.
type Options struct {
	InputExt  string
	OutputExt string
	ErrorExt  string
	// Filter keeps only inputs whose path contains it. Empty keeps everything.
	Filter string
}

func (o Options) normalized() Options {
	if o.InputExt == "" {
		o.InputExt = DefaultInputExt
	}
	if o.OutputExt == "" {
		o.OutputExt = DefaultOutputExt
	}
	if o.ErrorExt == "" {
		o.ErrorExt = DefaultErrorExt
	}
	return o
}

// NewTestCase derives the golden companions of inputPath.
func NewTestCase(inputPath string, opts Options) TestCase {
	opts = opts.normalized()
	return TestCase{
		InputPath:          inputPath,
		ExpectedOutputPath: DerivePath(inputPath, opts.InputExt, opts.OutputExt),
		ExpectedErrorPath:  DerivePath(inputPath, opts.InputExt, opts.ErrorExt),
	}
}

// DerivePath replaces a trailing fromExt with toExt. Occurrences of fromExt
// elsewhere in the path are left alone; a path without the suffix gets toExt appended.
func DerivePath(path, fromExt, toExt string) string {
	return strings.TrimSuffix(path, fromExt) + toExt
}

// Discover walks root recursively and returns a TestCase for every file with
// the input extension, in lexical walk order. An empty corpus is not an error.
//
// A symlinked root is followed. Test paths are always reported under root as
// given, not under the symlink target. Symlinks below root are not followed,
// and a symlink to a directory is never taken as a test.
func Discover(root string, opts Options) ([]TestCase, error) {
	opts = opts.normalized()

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: errNotDir}
	}

	var cases []TestCase
	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), opts.InputExt) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if target, statErr := os.Stat(path); statErr == nil && target.IsDir() {
				return nil
			}
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		inputPath := filepath.Join(root, rel)
		if opts.Filter != "" && !strings.Contains(inputPath, opts.Filter) {
			return nil
		}
		cases = append(cases, NewTestCase(inputPath, opts))
		return nil
	})
	if walkErr != nil {
		return nil, &DiscoveryError{Root: root, Err: walkErr}
	}
	return cases, nil
}
