package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ParseKeys turns a startup key script into key messages. <...> tokens
// name special keys (<Esc>, <CR>, <BS>, <Tab>, <Space>, arrows, <C-c>);
// everything else is literal text. A backslash before < makes it literal.
func ParseKeys(script string) []tea.KeyPressMsg {
	var msgs []tea.KeyPressMsg
	rest := script
	for rest != "" {
		if strings.HasPrefix(rest, `\<`) {
			msgs = append(msgs, runeMsg('<'))
			rest = rest[2:]
			continue
		}
		if rest[0] == '<' {
			if end := strings.IndexByte(rest, '>'); end > 0 {
				if msg, ok := namedKey(rest[1:end]); ok {
					msgs = append(msgs, msg)
					rest = rest[end+1:]
					continue
				}
			}
		}
		r := []rune(rest)[0]
		msgs = append(msgs, runeMsg(r))
		rest = rest[len(string(r)):]
	}
	return msgs
}

func runeMsg(r rune) tea.KeyPressMsg {
	if r == ' ' {
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func namedKey(name string) (tea.KeyPressMsg, bool) {
	switch strings.ToLower(name) {
	case "esc", "escape", "c-[":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}, true
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	case "lt":
		return runeMsg('<'), true
	case "c-c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, true
	}
	return tea.KeyPressMsg{}, false
}

// ApplyStartupKeys feeds the parsed script to the model. Commands the
// updates return are dropped; there is no program loop yet.
func ApplyStartupKeys(m *Model, script string) {
	if m == nil {
		return
	}
	for _, msg := range ParseKeys(script) {
		m.Update(msg)
		if m.editor.Quitting() {
			return
		}
	}
}
