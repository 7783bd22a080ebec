package license

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestSweep(t *testing.T, outputDir string, boundaries ...string) *Sweep {
	t.Helper()
	return New(afs.New(), log.New(io.Discard), outputDir, boundaries)
}

func TestRun_AscendsToBoundary(t *testing.T) {
	t.Parallel()
	libRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "lib")
	// Contributing directory three levels below the root, with artifacts at
	// the root and at a middle level.
	contributing := filepath.Join(libRoot, "MCAD", "gears", "involute")
	require.NoError(t, os.MkdirAll(contributing, 0o755))
	writeFile(t, filepath.Join(libRoot, "README"), "root readme")
	writeFile(t, filepath.Join(libRoot, "MCAD", "notes.txt"), "notes")

	s := newTestSweep(t, outputDir, libRoot)
	require.NoError(t, s.Run(context.Background(), []string{contributing}))

	data, err := os.ReadFile(filepath.Join(outputDir, "README"))
	require.NoError(t, err)
	assert.Equal(t, "root readme", string(data))
	data, err = os.ReadFile(filepath.Join(outputDir, "MCAD", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "notes", string(data))
}

func TestRun_NeverAscendsAboveBoundary(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	libRoot := filepath.Join(parent, "libraries")
	contributing := filepath.Join(libRoot, "MCAD")
	require.NoError(t, os.MkdirAll(contributing, 0o755))
	// An artifact above the boundary must not be collected.
	writeFile(t, filepath.Join(parent, "SECRET.txt"), "outside")
	writeFile(t, filepath.Join(libRoot, "LICENSE.md"), "license")
	outputDir := filepath.Join(t.TempDir(), "lib")

	s := newTestSweep(t, outputDir, libRoot)
	require.NoError(t, s.Run(context.Background(), []string{contributing}))

	assert.FileExists(t, filepath.Join(outputDir, "LICENSE.md"))
	assert.NoFileExists(t, filepath.Join(outputDir, "SECRET.txt"))
}

func TestRun_PatternMatching(t *testing.T) {
	t.Parallel()
	libRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "lib")
	writeFile(t, filepath.Join(libRoot, "COPYING"), "c")
	writeFile(t, filepath.Join(libRoot, "README"), "r")
	writeFile(t, filepath.Join(libRoot, "CHANGES.MD"), "m")
	writeFile(t, filepath.Join(libRoot, "notes.TXT"), "n")
	writeFile(t, filepath.Join(libRoot, "part.scad"), "not an artifact")

	s := newTestSweep(t, outputDir, libRoot)
	require.NoError(t, s.Run(context.Background(), []string{libRoot}))

	assert.FileExists(t, filepath.Join(outputDir, "COPYING"))
	assert.FileExists(t, filepath.Join(outputDir, "README"))
	assert.FileExists(t, filepath.Join(outputDir, "CHANGES.MD"))
	assert.FileExists(t, filepath.Join(outputDir, "notes.TXT"))
	assert.NoFileExists(t, filepath.Join(outputDir, "part.scad"))
}

func TestRun_CopiesEachSourceOnce(t *testing.T) {
	t.Parallel()
	libRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "lib")
	a := filepath.Join(libRoot, "a")
	b := filepath.Join(libRoot, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))
	writeFile(t, filepath.Join(libRoot, "README"), "shared")

	s := newTestSweep(t, outputDir, libRoot)
	// Both contributing directories reach the same README; the second visit
	// must be a no-op.
	require.NoError(t, s.Run(context.Background(), []string{a, b}))

	assert.FileExists(t, filepath.Join(outputDir, "README"))
	assert.True(t, s.copied[filepath.Join(libRoot, "README")])
	assert.Len(t, s.copied, 1)
}

func TestRun_NoBoundarySkipsWithoutError(t *testing.T) {
	t.Parallel()
	orphan := t.TempDir()
	writeFile(t, filepath.Join(orphan, "README"), "orphan")
	outputDir := filepath.Join(t.TempDir(), "lib")

	s := newTestSweep(t, outputDir, t.TempDir())
	require.NoError(t, s.Run(context.Background(), []string{orphan}))

	assert.NoFileExists(t, filepath.Join(outputDir, "README"))
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()
	assert.True(t, hasPathPrefix("/a/b/c", "/a/b"))
	assert.True(t, hasPathPrefix("/a/b", "/a/b"))
	// Sibling with a shared string prefix is not an ancestor.
	assert.False(t, hasPathPrefix("/a/bc", "/a/b"))
	assert.False(t, hasPathPrefix("/a", "/a/b"))
}
