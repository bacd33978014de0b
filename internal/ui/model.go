// Package ui is the terminal surface of the editor: a bubbletea model that
// paints the current frame, the path line and the status line.
package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/ye/internal/editor"
	"github.com/oakwood-commons/ye/internal/modal"
	"github.com/oakwood-commons/ye/internal/render"
)

// chromeLines is the path line plus the status line.
const chromeLines = 2

// Model adapts an editor session to bubbletea.
type Model struct {
	editor *editor.Editor
	theme  Theme

	width, height int
	top           int
}

// NewModel creates a model sized width x height.
func NewModel(ed *editor.Editor, theme Theme, width, height int) *Model {
	m := &Model{editor: ed, theme: theme}
	m.resize(width, height)
	return m
}

// Editor returns the session.
func (m *Model) Editor() *editor.Editor { return m.editor }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(size.Width, size.Height)
		return m, nil
	}
	return m, m.editor.Update(msg)
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

func (m *Model) resize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	m.width, m.height = width, height
	m.editor.SetSize(width, m.rows())
}

func (m *Model) rows() int {
	if r := m.height - chromeLines; r > 0 {
		return r
	}
	return 1
}

// scroll keeps the cursor box on screen.
func (m *Model) scroll(total, rows int) {
	if box, ok := m.editor.Document().Cursor().Box(); ok {
		if box.Line < m.top {
			m.top = box.Line
		}
		if box.Line >= m.top+rows {
			m.top = box.Line - rows + 1
		}
	}
	if maxTop := total - rows; m.top > maxTop {
		m.top = maxTop
	}
	if m.top < 0 {
		m.top = 0
	}
}

// Render paints the whole screen.
func (m *Model) Render() string {
	frame := m.editor.Document().Frame()
	rows := m.rows()
	m.scroll(len(frame.Lines), rows)

	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		idx := m.top + i
		if idx >= len(frame.Lines) {
			b.WriteString(m.theme.Filler.Render(render.FillerText))
			continue
		}
		if label := frame.RulerLabel(idx); label != "" {
			b.WriteString(m.theme.Ruler.Render(label))
		}
		for _, s := range frame.Lines[idx] {
			b.WriteString(m.theme.span(s))
		}
	}
	b.WriteByte('\n')
	b.WriteString(m.pathLine())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	return b.String()
}

// promptOnPathLine reports whether the open prompt belongs to the path
// line. Goto and transform edit a path; the others use the status line.
func (m *Model) promptOnPathLine() bool {
	in := m.editor.Controller().Input()
	return in.Active() && (m.editor.Mode() == modal.Transform || in.Prompt() == editor.GotoPrompt)
}

func (m *Model) pathLine() string {
	left := m.theme.Path.Render(m.editor.PathLine())
	if m.promptOnPathLine() {
		left = m.editor.Controller().Input().View()
	}
	right := m.theme.Path.Render(m.editor.Dialect().Name())
	if mode := m.editor.Mode(); mode != modal.Normal {
		right = m.theme.Mode.Render(" "+mode.String()+" ") + " " + right
	}
	return m.justify(left, right)
}

func (m *Model) statusLine() string {
	var left string
	in := m.editor.Controller().Input()
	switch st := m.editor.Status(); {
	case in.Active() && !m.promptOnPathLine() && m.editor.Mode() != modal.Insert:
		left = in.View()
	case st.Text != "" && st.Error:
		left = m.theme.Error.Render(st.Text)
	case st.Text != "":
		left = m.theme.Status.Render(st.Text)
	case m.editor.Mode() == modal.Insert:
		left = m.theme.Mode.Render("-- INSERT --")
	default:
		left = m.theme.Status.Render(m.editor.FileLabel())
	}
	return m.justify(left, m.theme.Status.Render(m.editor.Controller().Queue()))
}

// justify places right at the end of a width-wide line.
func (m *Model) justify(left, right string) string {
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		if right == "" {
			return left
		}
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// Run starts the interactive program and blocks until it exits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithWindowSize(m.width, m.height)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
