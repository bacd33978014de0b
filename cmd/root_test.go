package cmd

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

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	restore := stdinIsPiped
	stdinIsPiped = func() bool { return false }
	t.Cleanup(func() { stdinIsPiped = restore })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSnapshot(t *testing.T) {
	path := writeFile(t, "doc.json", `{"a": 1, "b": {"x": 1}}`)

	out, err := execute(t, path, "--snapshot", "--no-color", "--width", "30", "--height", "6")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{" 1 a: 1", " 2 b: {x: 1}", "~", "~"}, lines[:4])
	assert.Equal(t, ".a [key]              jmespath", lines[4])
	assert.Contains(t, lines[5], "doc.json")
}

func TestSnapshotWithPress(t *testing.T) {
	path := writeFile(t, "doc.yaml", "a: 1\nb:\n  x: 1\n")

	out, err := execute(t, path, "--snapshot", "--no-color", "--width", "30", "--height", "6", "--press", "jl")
	require.NoError(t, err)
	assert.Contains(t, out, ".b.x [key]")
}

func TestOutputAfterTransform(t *testing.T) {
	path := writeFile(t, "doc.json", `{"foo": {"bar": 42}}`)

	out, err := execute(t, path, "--press", "=foo<CR>", "--output", "json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"bar\": 42\n}\n", out)

	out, err = execute(t, path, "--press", "=foo<CR>", "--output", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "bar: 42\n", out)

	out, err = execute(t, path, "--dialect", "cel", "--press", "=_.foo<CR>", "-o", "tree")
	require.NoError(t, err)
	assert.Equal(t, ".\n└── bar: 42\n", out)
}

func TestOutputRejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, "doc.json", `{}`)

	_, err := execute(t, path, "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWriteFromStartupKeys(t *testing.T) {
	path := writeFile(t, "doc.json", `{"a": 1, "c": 3}`)

	_, err := execute(t, path, "--press", "ob:2<CR>:w<CR>", "--output", "json")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2,\n  \"c\": 3\n}\n", string(data))
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")

	out, err := execute(t, path, "--snapshot", "--no-color", "--width", "40", "--height", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "[new file]")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "snapshot must not create the file")
}

func TestBadDialect(t *testing.T) {
	path := writeFile(t, "doc.json", `{}`)

	_, err := execute(t, path, "--dialect", "xpath", "--output", "json")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ye "), out)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "editor:")
	assert.Contains(t, out, "dialect: jmespath")

	cfgPath := writeFile(t, "config.yaml", "editor:\n  dialect: cel\n")
	out, err = execute(t, "config", "--config-file", cfgPath, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "# merged with "+cfgPath)
	assert.Contains(t, out, `"dialect": "cel"`)

	_, err = execute(t, "config", "-o", "xml")
	require.Error(t, err)
}

func TestConfigFileSetsDialect(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "editor:\n  dialect: cel\n")
	path := writeFile(t, "doc.json", `{"foo": 1}`)

	out, err := execute(t, path, "--config-file", cfgPath, "--snapshot", "--no-color", "--width", "30", "--height", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "cel")
}

func TestMissingConfigFile(t *testing.T) {
	path := writeFile(t, "doc.json", `{}`)

	_, err := execute(t, path, "--config-file", filepath.Join(t.TempDir(), "nope.yaml"), "--output", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
