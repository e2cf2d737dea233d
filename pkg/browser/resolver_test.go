package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/browser-tools/browserhost-go/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (l *testLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (l *testLogger) Debugf(format string, args ...interface{})               {}
func (l *testLogger) Infof(format string, args ...interface{})                {}
func (l *testLogger) Warnf(format string, args ...interface{})                {}
func (l *testLogger) Errorf(format string, args ...interface{})               {}

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

func TestResolveExecutable_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome")
	writeFile(t, path, 0o755)

	resolved, err := ResolveExecutable(path, &testLogger{})
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestResolveExecutable_OverrideMissing(t *testing.T) {
	_, err := ResolveExecutable(filepath.Join(t.TempDir(), "nope"), &testLogger{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestResolveExecutable_OverrideNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "chrome")
	writeFile(t, path, 0o644)

	_, err := ResolveExecutable(path, &testLogger{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestScanRoots_FindsNestedExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on Windows")
	}

	root := t.TempDir()
	nested := filepath.Join(root, "chromium-1148", "chrome-linux", "headless_shell")
	writeFile(t, nested, 0o755)

	found := scanRoots([]string{root}, executableNames)
	assert.Equal(t, nested, found)
	assert.Equal(t, "headless_shell", filepath.Base(found))
}

func TestScanRoots_SkipsNonExecutableAndWrongNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on Windows")
	}

	root := t.TempDir()
	// Right name, missing exec bit
	writeFile(t, filepath.Join(root, "a", "chrome"), 0o644)
	// Exec bit set, name only a prefix match
	writeFile(t, filepath.Join(root, "b", "chrome-wrapper"), 0o755)

	found := scanRoots([]string{root}, executableNames)
	assert.Empty(t, found)
}

func TestScanRoots_FirstMatchWins(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on Windows")
	}

	first := t.TempDir()
	second := t.TempDir()
	firstHit := filepath.Join(first, "chrome-linux", "chrome")
	writeFile(t, firstHit, 0o755)
	writeFile(t, filepath.Join(second, "chrome-linux", "chrome"), 0o755)

	found := scanRoots([]string{first, second}, executableNames)
	assert.Equal(t, firstHit, found)
}

func TestScanRoots_MissingRoot(t *testing.T) {
	found := scanRoots([]string{filepath.Join(t.TempDir(), "does-not-exist")}, executableNames)
	assert.Empty(t, found)
}
