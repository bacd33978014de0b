package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "ye", cfg.App.Name)
	assert.Equal(t, 5*time.Second, cfg.StatusTimeout())
	assert.Equal(t, 60, IntValue(cfg.Editor.InlineWidth, 0))
	assert.True(t, BoolValue(cfg.Editor.Ruler, false))
	assert.Equal(t, "jmespath", cfg.Editor.Dialect)
	assert.Equal(t, "goParent", cfg.Keys["h"])
	assert.Equal(t, "transform", cfg.Keys["="])
	assert.Equal(t, "exit", cfg.Keys["ctrl+c"])

	byName := map[string]CommandConfig{}
	for _, c := range cfg.Commands {
		byName[c.Name] = c
	}
	assert.True(t, byName["exit"].Expandable())
	assert.Equal(t, []string{"quit", "q"}, byName["exit"].Aliases)
	assert.False(t, byName["echoerr"].Expandable())
	assert.Equal(t, []string{"cwd"}, byName["pwd"].Aliases)
	for _, name := range cfg.Keys {
		assert.Contains(t, byName, name, "key bound to unknown command")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  status_timeout_ms: 250
editor:
  inline_width: 0
  dialect: cel
theme:
  key: "#ff0000"
keys:
  q: ""
  Q: exit
commands:
  - name: pwd
    expand: true
  - name: extra
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.StatusTimeout())
	assert.Equal(t, 0, IntValue(cfg.Editor.InlineWidth, 60))
	assert.Equal(t, 2, IntValue(cfg.Editor.Indent, 0))
	assert.Equal(t, "cel", cfg.Editor.Dialect)
	assert.Equal(t, "#ff0000", cfg.Theme.Key)
	assert.Equal(t, "25", cfg.Theme.SelectedBG)

	_, hasQ := cfg.Keys["q"]
	assert.False(t, hasQ)
	assert.Equal(t, "exit", cfg.Keys["Q"])
	assert.Equal(t, "goParent", cfg.Keys["h"])

	var pwd CommandConfig
	for _, c := range cfg.Commands {
		if c.Name == "pwd" {
			pwd = c
		}
	}
	assert.True(t, pwd.Expandable())
	assert.Equal(t, []string{"cwd"}, pwd.Aliases)
	assert.Equal(t, "extra", cfg.Commands[len(cfg.Commands)-1].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Empty(t, ResolvePath(""))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ye"), 0o755))
	p := filepath.Join(dir, "ye", "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("app: {}\n"), 0o600))
	assert.Equal(t, p, ResolvePath(""))
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "status_timeout_ms: 5000")
	assert.Contains(t, string(out), "name: goNextKey")
}
