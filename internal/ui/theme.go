package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/ye/internal/config"
	"github.com/oakwood-commons/ye/internal/render"
)

// Theme holds the styles used to paint a frame and the two bottom lines.
type Theme struct {
	Key      lipgloss.Style
	Value    lipgloss.Style
	Punct    lipgloss.Style
	Match    lipgloss.Style
	Selected lipgloss.Style
	Ruler    lipgloss.Style
	Filler   lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Path     lipgloss.Style
	Mode     lipgloss.Style
}

// NewTheme builds styles from configured colors. With noColor every style
// is plain except the selection, which stays visible as reverse video.
func NewTheme(cfg config.ThemeConfig, noColor bool) Theme {
	plain := lipgloss.NewStyle()
	if noColor {
		return Theme{
			Key: plain, Value: plain, Punct: plain, Match: plain.Underline(true),
			Selected: plain.Reverse(true),
			Ruler:    plain, Filler: plain, Status: plain, Error: plain, Path: plain, Mode: plain,
		}
	}
	fg := func(c string) lipgloss.Style {
		if c == "" {
			return plain
		}
		return plain.Foreground(lipgloss.Color(c))
	}
	withBG := func(s lipgloss.Style, c string) lipgloss.Style {
		if c == "" {
			return s
		}
		return s.Background(lipgloss.Color(c))
	}
	return Theme{
		Key:      fg(cfg.Key).Bold(true),
		Value:    fg(cfg.Value),
		Punct:    fg(cfg.Punct),
		Match:    withBG(fg(cfg.MatchFG), cfg.MatchBG),
		Selected: withBG(fg(cfg.SelectedFG), cfg.SelectedBG),
		Ruler:    withBG(fg(cfg.RulerFG), cfg.RulerBG),
		Filler:   fg(cfg.Filler),
		Status:   fg(cfg.Status),
		Error:    fg(cfg.Error).Bold(true),
		Path:     fg(cfg.Path),
		Mode:     withBG(fg(cfg.Mode), cfg.ModeBG).Bold(true),
	}
}

// span styles one frame span.
func (t Theme) span(s render.Span) string {
	if s.Selected {
		return t.Selected.Render(s.Text)
	}
	switch s.Role {
	case render.RoleKey:
		return t.Key.Render(s.Text)
	case render.RoleValue:
		return t.Value.Render(s.Text)
	case render.RolePunct:
		return t.Punct.Render(s.Text)
	case render.RoleMatch:
		return t.Match.Render(s.Text)
	}
	return s.Text
}
