package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := newRootCmd(&buf)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func copyMilling(t *testing.T, dir string) string {
	data, err := os.ReadFile("../../testdata/milling.json")
	require.NoError(t, err)
	path := filepath.Join(dir, "milling.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConvertCommands(t *testing.T) {
	dir := t.TempDir()
	input := copyMilling(t, dir)

	_, err := run(t, "to-aml", input)
	require.NoError(t, err)
	aml := filepath.Join(dir, "milling.aml")
	assert.FileExists(t, aml)

	back := filepath.Join(dir, "back.json")
	_, err = run(t, "to-fpd", aml, "-o", back)
	require.NoError(t, err)
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fpb:Project"`)

	out, err := run(t, "to-aml", input, "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	input := copyMilling(t, dir)
	dst := filepath.Join(dir, "out")

	out, err := run(t, "batch", input, "-o", dst, "-w", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+input)
	assert.FileExists(t, filepath.Join(dst, "milling.aml"))

	_, err = run(t, "batch", input, filepath.Join(dir, "missing.json"))
	assert.EqualError(t, err, "1 of 2 conversions failed")
}

func TestRenderCommand(t *testing.T) {
	input := copyMilling(t, t.TempDir())

	out, err := run(t, "render", input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph FPD {"))

	_, err = run(t, "render", input, "--format", "gif")
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch: ["), 0o644))

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "render", "x.json"})
	assert.Error(t, cmd.Execute())
}
