package lineinput

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

type trace struct {
	changes   []string
	submitted *string
	cancelled bool
	delimited string
}

func (tr *trace) session() Session {
	return Session{
		Delimiters: ":",
		OnChange:   func(v string) { tr.changes = append(tr.changes, v) },
		OnSubmit:   func(v string) { tr.submitted = &v },
		OnCancel:   func() { tr.cancelled = true },
		OnDelimiter: func(v string, r rune) {
			tr.delimited = v + string(r)
		},
	}
}

func TestTypingCallsOnChangeAndEnterSubmits(t *testing.T) {
	m := New()
	tr := &trace{}
	m.Open("%=", tr.session())
	require.True(t, m.Active())

	typeText(m, "foo")
	assert.Equal(t, []string{"f", "fo", "foo"}, tr.changes)
	assert.Contains(t, m.View(), "%=")

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, tr.submitted)
	assert.Equal(t, "foo", *tr.submitted)
	assert.False(t, m.Active())
	assert.Empty(t, m.View())
}

func TestEscapeCancels(t *testing.T) {
	m := New()
	tr := &trace{}
	m.Open(":", tr.session())
	typeText(m, "abc")
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.True(t, tr.cancelled)
	assert.Nil(t, tr.submitted)
	assert.False(t, m.Active())
}

func TestBackspaceOnEmptyCancels(t *testing.T) {
	m := New()
	tr := &trace{}
	m.Open("/", tr.session())
	typeText(m, "a")
	m.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.False(t, tr.cancelled, "first backspace only deletes")
	assert.Equal(t, []string{"a", ""}, tr.changes)
	require.True(t, m.Active())

	m.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.True(t, tr.cancelled)
	assert.False(t, m.Active())
}

func TestDelimiterEndsSession(t *testing.T) {
	m := New()
	tr := &trace{}
	m.Open("", tr.session())
	typeText(m, "key:")
	assert.Equal(t, "key:", tr.delimited)
	assert.False(t, m.Active())
	assert.Equal(t, []string{"k", "ke", "key"}, tr.changes)
}

func TestCallbackMayReopen(t *testing.T) {
	m := New()
	reopened := false
	m.Open("", Session{
		Delimiters: ":",
		OnDelimiter: func(string, rune) {
			m.Open("", Session{Initial: "x", OnSubmit: func(string) { reopened = true }})
		},
	})
	typeText(m, ":")
	require.True(t, m.Active())
	assert.Equal(t, "x", m.Value())
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, reopened)
}

func TestUpdateWithoutSessionIsNoop(t *testing.T) {
	m := New()
	assert.Nil(t, m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"}))
	assert.False(t, m.Active())
}
