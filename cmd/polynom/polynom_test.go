package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtures are P1..P6 for ∫(1 + x + 3x^2) + (2x + 6x)·1.
var fixtures = []string{
	"0 1\n1 1\n",
	"1 1\n",
	"1 3\n",
	"2 1\n",
	"3 1\n",
	"0 1\n",
}

const fixtureOutput = "P(x):\n1.0*x^3 + 0.5*x^2 + 9.0*x\n\nP(2) = 28.0\n"

// writeInputs creates input01.txt..input06.txt in dir.
func writeInputs(t *testing.T, dir string) []string {
	t.Helper()
	paths := make([]string, len(fixtures))
	for i, body := range fixtures {
		paths[i] = filepath.Join(dir, fmt.Sprintf("input%02d.txt", i+1))
		require.NoError(t, os.WriteFile(paths[i], []byte(body), 0o644))
	}
	return paths
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCompose_DefaultInputs(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeInputs(t, dir)

	out, _, err := run(t)
	require.NoError(t, err)
	assert.Equal(t, fixtureOutput, out)
}

func TestCompose_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, len(fixtures))
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("input%02d.txt", i+1))
		require.NoError(t, os.WriteFile(paths[i], []byte("0 0\n"), 0o644))
	}
	chdir(t, dir)

	out, _, err := run(t, paths...)
	require.NoError(t, err)
	assert.Equal(t, "P(x):\n0\n\nP(2) = 0.0\n", out)
}

func TestCompose_ExplicitFiles(t *testing.T) {
	chdir(t, t.TempDir())
	paths := writeInputs(t, t.TempDir())

	out, _, err := run(t, paths...)
	require.NoError(t, err)
	assert.Equal(t, fixtureOutput, out)
}

func TestCompose_ConfigAndPointFlag(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)
	data := filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	writeInputs(t, data)
	cfgPath := filepath.Join(root, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dir: data\npoint: 5\n"), 0o644))

	out, _, err := run(t, "--config", cfgPath, "--point", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "P(1) = 10.5")
}

func TestCompose_DirFlag(t *testing.T) {
	chdir(t, t.TempDir())
	data := t.TempDir()
	writeInputs(t, data)

	out, _, err := run(t, "--dir", data, "-x", "-1")
	require.NoError(t, err)
	// -1 + 0.5 - 9
	assert.Contains(t, out, "P(-1) = -9.5")
}

func TestCompose_WrongArgCount(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := run(t, "a.txt", "b.txt")
	assert.ErrorContains(t, err, "expected 0 or 6")
}

func TestCompose_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := run(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

func TestCompose_ParseError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	paths := writeInputs(t, dir)
	require.NoError(t, os.WriteFile(paths[2], []byte("abc def\n"), 0o644))

	_, _, err := run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input03.txt")
}

func TestCompose_BadLogLevel(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := run(t, "--log-level", "chatty")
	assert.ErrorContains(t, err, "--log-level")
}

func TestCompose_DebugLogging(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeInputs(t, dir)

	out, logs, err := run(t, "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, fixtureOutput, out)
	assert.Contains(t, logs, "polynomial loaded")
	assert.Contains(t, logs, "name=P6")
}

func TestShow(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("3 1\n1 2\n"), 0o644))

	out, _, err := run(t, "show", path)
	require.NoError(t, err)
	want := strings.Join([]string{
		"P(x)    = 1.0*x^3 + 2.0*x",
		"P'(x)   = 3.0*x^2 + 2.0",
		"P''(x)  = 6.0*x",
		"∫P(x)dx = 0.25*x^4 + 1.0*x^2",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestEval(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("2 3.0\n0 1.0\n1 -2\n"), 0o644))

	out, _, err := run(t, "eval", path, "1", "0.5")
	require.NoError(t, err)
	assert.Equal(t, "P(1) = 2.0\nP(0.5) = 0.75\n", out)
}

func TestEval_InvalidPoint(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := run(t, "eval", "p.txt", "two")
	assert.ErrorContains(t, err, "invalid point")
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test to
// share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_RecomputesOnChange(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	paths := writeInputs(t, dir)

	var stdout, stderr syncBuffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"watch"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "P(2) = 28.0")
	}, 5*time.Second, 20*time.Millisecond)

	// P6 = 2 doubles the derivative part: x^3 + 0.5x^2 + 17x, 8 + 2 + 34.
	require.NoError(t, os.WriteFile(paths[5], []byte("0 2\n"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "P(2) = 44.0")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
