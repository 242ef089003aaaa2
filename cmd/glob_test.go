// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"src/main.p",
		"src/legacy.p",
		"lib/utils.i",
	}
	result := filterExcludes(paths, []string{"legacy.p"})
	assert.Equal(t, []string{"src/main.p", "lib/utils.i"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"src/main.p",
		"build/output.p",
		"build/sub/deep.cls",
		"lib/utils.i",
	}
	result := filterExcludes(paths, []string{"build"})
	assert.Equal(t, []string{"src/main.p", "lib/utils.i"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"src/main.p",
		"src/generated_foo.w",
		"src/generated_bar.w",
		"lib/utils.i",
	}
	result := filterExcludes(paths, []string{"generated_*"})
	assert.Equal(t, []string{"src/main.p", "lib/utils.i"}, result)
}

func TestFilterExcludes_NoMatches(t *testing.T) {
	paths := []string{"src/main.p", "lib/utils.i"}
	assert.Equal(t, paths, filterExcludes(paths, []string{"nonexistent"}))
	assert.Equal(t, paths, filterExcludes(paths, nil))
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("src/main.p", []string{"src/*.p"}))
	assert.False(t, matchesAny("lib/main.p", []string{"src/*.p"}))
	assert.True(t, matchesAny("deep/nested/legacy.p", []string{"legacy.p"}))
	assert.True(t, matchesAny("project/build/output.p", []string{"build"}))
	assert.False(t, matchesAny("project/src/output.p", []string{"build"}))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.p"}, splitPath("./a/b/c.p"))
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.p", "b.W", "c.i", "sub/d.cls", "sub/notes.txt", "vendor/e.p"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("message \"x\".\n"), 0o600))
	}

	got, err := expandArgs([]string{dir + "/...", "plain.p"}, []string{"vendor"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.p"),
		filepath.Join(dir, "b.W"),
		filepath.Join(dir, "c.i"),
		filepath.Join(dir, "sub", "d.cls"),
		"plain.p",
	}, got)
}

func TestExpandArgs_MissingDir(t *testing.T) {
	_, err := expandArgs([]string{filepath.Join(t.TempDir(), "missing") + "/..."}, nil)
	assert.Error(t, err)
}
