// Package lineinput is a single-line prompt with per-keystroke callbacks,
// built on the bubbles text input.
package lineinput

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// Session describes one prompt. Every callback is optional. The prompt is
// closed before OnSubmit, OnCancel or OnDelimiter runs, so a callback may
// open a new session.
type Session struct {
	Initial string
	// Delimiters are runes that end the session early.
	Delimiters  string
	OnChange    func(value string)
	OnSubmit    func(value string)
	OnCancel    func()
	OnDelimiter func(value string, r rune)
}

// Model holds at most one open session.
type Model struct {
	input   textinput.Model
	prompt  string
	session *Session
}

// New returns a closed prompt.
func New() *Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.SetWidth(80)
	return &Model{input: ti}
}

// Open starts a session, replacing any open one without callbacks.
func (m *Model) Open(prompt string, s Session) tea.Cmd {
	m.prompt = prompt
	m.session = &s
	m.input.SetValue(s.Initial)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Active reports whether a session is open.
func (m *Model) Active() bool {
	return m.session != nil
}

// Value returns the current text.
func (m *Model) Value() string {
	return m.input.Value()
}

// Prompt returns the prompt of the open session.
func (m *Model) Prompt() string {
	return m.prompt
}

// SetWidth sets the visible input width.
func (m *Model) SetWidth(w int) {
	if w > 0 {
		m.input.SetWidth(w)
	}
}

func (m *Model) close() *Session {
	s := m.session
	m.session = nil
	m.prompt = ""
	m.input.Blur()
	return s
}

// Update feeds a message to the open session.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.session == nil {
		return nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		value := m.input.Value()
		switch key.String() {
		case "enter":
			if s := m.close(); s.OnSubmit != nil {
				s.OnSubmit(value)
			}
			return nil
		case "esc", "ctrl+c":
			m.cancel()
			return nil
		case "backspace":
			if value == "" {
				m.cancel()
				return nil
			}
		}
		if r := []rune(key.Text); len(r) == 1 && strings.ContainsRune(m.session.Delimiters, r[0]) {
			if s := m.close(); s.OnDelimiter != nil {
				s.OnDelimiter(value, r[0])
			}
			return nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev && m.session.OnChange != nil {
		m.session.OnChange(v)
	}
	return cmd
}

func (m *Model) cancel() {
	if s := m.close(); s.OnCancel != nil {
		s.OnCancel()
	}
}

// View renders the prompt and the input.
func (m *Model) View() string {
	if m.session == nil {
		return ""
	}
	return m.prompt + m.input.View()
}
