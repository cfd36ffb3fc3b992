package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDerivePath_ReplacesOnlyTrailingExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "test/t1.norn", want: "test/t1.out"},
		{name: "token in directory", in: "test/x.norn/t1.norn", want: "test/x.norn/t1.out"},
		{name: "token in base name", in: "test/a.norn.b.norn", want: "test/a.norn.b.out"},
		{name: "no extension", in: "test/readme", want: "test/readme.out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DerivePath(tt.in, ".norn", ".out"))
		})
	}
}

func TestNewTestCase_IsPureFunctionOfInput(t *testing.T) {
	t.Parallel()

	a := NewTestCase("test/loops/while.norn", Options{})
	b := NewTestCase("test/loops/while.norn", Options{})

	assert.Equal(t, a, b)
	assert.Equal(t, "test/loops/while.out", a.ExpectedOutputPath)
	assert.Equal(t, "test/loops/while.err", a.ExpectedErrorPath)
}

func TestDiscover_FindsInputsRecursivelyInStableOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.norn"), "")
	writeFile(t, filepath.Join(root, "b.out"), "")
	writeFile(t, filepath.Join(root, "a.norn"), "")
	writeFile(t, filepath.Join(root, "nested", "deep", "c.norn"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	first, err := Discover(root, Options{})
	require.NoError(t, err)
	second, err := Discover(root, Options{})
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(root, "a.norn"), first[0].InputPath)
	assert.Equal(t, filepath.Join(root, "b.norn"), first[1].InputPath)
	assert.Equal(t, filepath.Join(root, "nested", "deep", "c.norn"), first[2].InputPath)
	assert.Equal(t, filepath.Join(root, "b.out"), first[1].ExpectedOutputPath)
}

func TestDiscover_AppliesFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "loops", "for.norn"), "")
	writeFile(t, filepath.Join(root, "calls", "rec.norn"), "")

	cases, err := Discover(root, Options{Filter: "loops"})
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, filepath.Join(root, "loops", "for.norn"), cases[0].InputPath)
}

func TestDiscover_EmptyCorpusIsNotAnError(t *testing.T) {
	t.Parallel()

	cases, err := Discover(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestDiscover_ReturnsDiscoveryError_When_RootIsMissingOrAFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Discover(filepath.Join(dir, "missing"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscovery)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	file := filepath.Join(dir, "t.norn")
	writeFile(t, file, "")
	_, err = Discover(file, Options{})
	require.Error(t, err)

	var discErr *DiscoveryError
	require.True(t, errors.As(err, &discErr))
	assert.Equal(t, file, discErr.Root)
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestDiscover_FollowsSymlinkedRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "corpus")
	writeFile(t, filepath.Join(target, "t1.norn"), "")
	writeFile(t, filepath.Join(target, "nested", "t2.norn"), "")
	link := filepath.Join(dir, "test")
	symlinkOrSkip(t, target, link)

	cases, err := Discover(link, Options{})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, filepath.Join(link, "nested", "t2.norn"), cases[0].InputPath, "paths stay under the root as given")
	assert.Equal(t, filepath.Join(link, "t1.norn"), cases[1].InputPath)
	assert.Equal(t, filepath.Join(link, "t1.out"), cases[1].ExpectedOutputPath)
}

func TestDiscover_SkipsSymlinkedDirectoryWithInputExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.norn"), "")
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "inner.norn"), "")
	symlinkOrSkip(t, other, filepath.Join(root, "dir.norn"))
	symlinkOrSkip(t, filepath.Join(root, "real.norn"), filepath.Join(root, "alias.norn"))

	cases, err := Discover(root, Options{})
	require.NoError(t, err)
	require.Len(t, cases, 2, "directory symlinks are neither tests nor followed")
	assert.Equal(t, filepath.Join(root, "alias.norn"), cases[0].InputPath, "file symlinks are still tests")
	assert.Equal(t, filepath.Join(root, "real.norn"), cases[1].InputPath)
}
