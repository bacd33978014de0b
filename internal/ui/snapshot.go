package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SnapshotConfig controls a one-frame render without a terminal.
type SnapshotConfig struct {
	Width   int
	Height  int
	NoColor bool
	// Keys is a startup key script replayed before rendering.
	Keys string
}

// RenderSnapshot replays the keys and returns the resulting screen. With
// NoColor the output is plain text.
func RenderSnapshot(m *Model, cfg SnapshotConfig) string {
	if cfg.Width > 0 || cfg.Height > 0 {
		m.resize(cfg.Width, cfg.Height)
	}
	ApplyStartupKeys(m, cfg.Keys)
	view := m.Render()
	if cfg.NoColor {
		view = ansi.Strip(view)
	}
	lines := strings.Split(view, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
