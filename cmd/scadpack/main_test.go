package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibraryRoots(t *testing.T) {
	roots := defaultLibraryRoots()
	require.Len(t, roots, 1)
	assert.Contains(t, roots[0], "OpenSCAD")
	assert.True(t, filepath.IsAbs(roots[0]))
}

func TestLibraryRoots_FlagsAppend(t *testing.T) {
	flagClearPaths = false
	flagLibraryPaths = []string{"/extra/libs"}
	t.Cleanup(func() { flagLibraryPaths = nil })

	roots := libraryRoots(config{})

	require.NotEmpty(t, roots)
	assert.Equal(t, "/extra/libs", roots[len(roots)-1])
}

func TestLibraryRoots_ClearDropsDefaults(t *testing.T) {
	flagClearPaths = true
	flagLibraryPaths = []string{"/only/libs"}
	t.Cleanup(func() {
		flagClearPaths = false
		flagLibraryPaths = nil
	})

	roots := libraryRoots(config{LibraryPaths: []string{"/from/config"}})

	assert.Equal(t, []string{"/only/libs"}, roots)
}

func TestLibraryRoots_ConfigReplacesDefaults(t *testing.T) {
	flagClearPaths = false
	flagLibraryPaths = nil

	roots := libraryRoots(config{LibraryPaths: []string{"/from/config"}})

	assert.Equal(t, []string{"/from/config"}, roots)
}

func TestLoadConfig_MissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.LibraryPaths)
	assert.Empty(t, cfg.LibDirname)
}

func TestLoadConfig_ReadsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"library_paths:\n  - /opt/scad/libs\nlib_dirname: vendor\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/scad/libs"}, cfg.LibraryPaths)
	assert.Equal(t, "vendor", cfg.LibDirname)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestPrintSuccess(t *testing.T) {
	var sb strings.Builder
	printSuccess(&sb, "/releases/thing", "thing.scad")

	out := sb.String()
	assert.Contains(t, out, filepath.Join("/releases/thing", "thing.scad"))
	assert.Contains(t, out, "openscad")
}
