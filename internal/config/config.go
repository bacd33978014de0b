// Package config holds the editor configuration: embedded defaults merged
// with an optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// AppConfig holds application metadata.
type AppConfig struct {
	Name            string `yaml:"name,omitempty"`
	Description     string `yaml:"description,omitempty"`
	StatusTimeoutMS *int   `yaml:"status_timeout_ms,omitempty"`
}

// EditorConfig holds layout and query settings.
type EditorConfig struct {
	Indent      *int   `yaml:"indent,omitempty"`
	InlineWidth *int   `yaml:"inline_width,omitempty"`
	Ruler       *bool  `yaml:"ruler,omitempty"`
	Dialect     string `yaml:"dialect,omitempty"`
}

// ThemeConfig holds colors as lipgloss color strings (ANSI numbers or hex).
type ThemeConfig struct {
	Key        string `yaml:"key,omitempty"`
	Value      string `yaml:"value,omitempty"`
	Punct      string `yaml:"punct,omitempty"`
	MatchFG    string `yaml:"match_fg,omitempty"`
	MatchBG    string `yaml:"match_bg,omitempty"`
	SelectedFG string `yaml:"selected_fg,omitempty"`
	SelectedBG string `yaml:"selected_bg,omitempty"`
	RulerFG    string `yaml:"ruler_fg,omitempty"`
	RulerBG    string `yaml:"ruler_bg,omitempty"`
	Filler     string `yaml:"filler,omitempty"`
	Status     string `yaml:"status,omitempty"`
	Error      string `yaml:"error,omitempty"`
	Path       string `yaml:"path,omitempty"`
	Mode       string `yaml:"mode,omitempty"`
	ModeBG     string `yaml:"mode_bg,omitempty"`
}

// CommandConfig declares a command and how it can be typed.
type CommandConfig struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases,omitempty"`
	Expand      *bool    `yaml:"expand,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Expandable reports whether the command accepts abbreviations.
func (c CommandConfig) Expandable() bool {
	return c.Expand != nil && *c.Expand
}

// Config is the whole configuration file.
type Config struct {
	App      AppConfig         `yaml:"app"`
	Editor   EditorConfig      `yaml:"editor"`
	Theme    ThemeConfig       `yaml:"theme"`
	Keys     map[string]string `yaml:"keys"`
	Commands []CommandConfig   `yaml:"commands"`
}

// DefaultYAML returns a copy of the embedded defaults.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, errors.New("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode embedded default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Merge(user), nil
}

// ResolvePath picks the config file: explicit, then
// $XDG_CONFIG_HOME/ye/config.yaml, then ~/.config/ye/config.yaml. It
// returns "" when none exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, "ye", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "ye", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Merge overlays o on c. Set fields of o win; key bindings merge per key
// and an empty binding removes the key; commands merge by name.
func (c Config) Merge(o Config) Config {
	out := c
	out.App = mergeApp(c.App, o.App)
	out.Editor = mergeEditor(c.Editor, o.Editor)
	out.Theme = mergeTheme(c.Theme, o.Theme)

	out.Keys = make(map[string]string, len(c.Keys)+len(o.Keys))
	for k, v := range c.Keys {
		out.Keys[k] = v
	}
	for k, v := range o.Keys {
		if v == "" {
			delete(out.Keys, k)
			continue
		}
		out.Keys[k] = v
	}

	out.Commands = append([]CommandConfig(nil), c.Commands...)
	for _, oc := range o.Commands {
		idx := -1
		for i, existing := range out.Commands {
			if existing.Name == oc.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out.Commands = append(out.Commands, oc)
			continue
		}
		merged := out.Commands[idx]
		if oc.Aliases != nil {
			merged.Aliases = oc.Aliases
		}
		if oc.Expand != nil {
			merged.Expand = oc.Expand
		}
		if oc.Description != "" {
			merged.Description = oc.Description
		}
		out.Commands[idx] = merged
	}
	return out
}

func mergeApp(base, o AppConfig) AppConfig {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Description != "" {
		base.Description = o.Description
	}
	if o.StatusTimeoutMS != nil {
		base.StatusTimeoutMS = o.StatusTimeoutMS
	}
	return base
}

func mergeEditor(base, o EditorConfig) EditorConfig {
	if o.Indent != nil {
		base.Indent = o.Indent
	}
	if o.InlineWidth != nil {
		base.InlineWidth = o.InlineWidth
	}
	if o.Ruler != nil {
		base.Ruler = o.Ruler
	}
	if o.Dialect != "" {
		base.Dialect = o.Dialect
	}
	return base
}

func mergeTheme(base, o ThemeConfig) ThemeConfig {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&base.Key, o.Key)
	pick(&base.Value, o.Value)
	pick(&base.Punct, o.Punct)
	pick(&base.MatchFG, o.MatchFG)
	pick(&base.MatchBG, o.MatchBG)
	pick(&base.SelectedFG, o.SelectedFG)
	pick(&base.SelectedBG, o.SelectedBG)
	pick(&base.RulerFG, o.RulerFG)
	pick(&base.RulerBG, o.RulerBG)
	pick(&base.Filler, o.Filler)
	pick(&base.Status, o.Status)
	pick(&base.Error, o.Error)
	pick(&base.Path, o.Path)
	pick(&base.Mode, o.Mode)
	pick(&base.ModeBG, o.ModeBG)
	return base
}

// StatusTimeout is how long a status message stays visible.
func (c Config) StatusTimeout() time.Duration {
	if c.App.StatusTimeoutMS == nil || *c.App.StatusTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(*c.App.StatusTimeoutMS) * time.Millisecond
}

// IntValue dereferences an optional int.
func IntValue(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// BoolValue dereferences an optional bool.
func BoolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

// YAML encodes the configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
