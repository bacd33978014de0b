// Package modal routes keystrokes by input mode. Normal mode maps keys to
// commands with a typed repeat count; the other modes are line-input
// sessions, of which at most one is open.
package modal

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/oakwood-commons/ye/internal/engine"
	"github.com/oakwood-commons/ye/internal/lineinput"
)

// ErrBusy is returned by Open while a session is open.
var ErrBusy = errors.New("an input session is already open")

// Mode is the active input mode.
type Mode int

const (
	Normal Mode = iota
	Command
	Search
	Insert
	Transform
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Command:
		return "COMMAND"
	case Search:
		return "SEARCH"
	case Insert:
		return "INSERT"
	case Transform:
		return "TRANSFORM"
	}
	return "MODE(" + strconv.Itoa(int(m)) + ")"
}

// DefaultPrompts are the prompt prefixes per mode.
var DefaultPrompts = map[Mode]string{
	Command:   ":",
	Search:    "/",
	Insert:    "",
	Transform: "%=",
}

// CommandKey opens the command line in normal mode.
const CommandKey = ":"

// Executor runs commands by name.
type Executor interface {
	Exec(ctx engine.Context, name string, args []string) error
}

// KeyQueue collects digits typed before a bound key.
type KeyQueue struct {
	digits strings.Builder
}

// Push appends a digit.
func (q *KeyQueue) Push(d rune) {
	q.digits.WriteRune(d)
}

// Drain returns the count and empties the queue. An empty or zero count
// is 1.
func (q *KeyQueue) Drain() int {
	n, err := strconv.Atoi(q.digits.String())
	q.digits.Reset()
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Clear empties the queue.
func (q *KeyQueue) Clear() {
	q.digits.Reset()
}

func (q *KeyQueue) String() string {
	return q.digits.String()
}

// Controller is the mode state machine.
type Controller struct {
	ctx      context.Context
	mode     Mode
	queue    KeyQueue
	bindings map[string]string
	input    *lineinput.Model
	exec     Executor
	onError  func(error)
	pending  tea.Cmd
}

// New creates a controller in normal mode. bindings maps key names, as
// reported by tea.KeyPressMsg.String, to command names.
func New(ctx context.Context, exec Executor, input *lineinput.Model, bindings map[string]string) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	if input == nil {
		input = lineinput.New()
	}
	return &Controller{ctx: ctx, exec: exec, input: input, bindings: bindings}
}

// OnError sets the hook for errors raised outside a direct call, such as a
// command typed on the command line.
func (c *Controller) OnError(fn func(error)) {
	c.onError = fn
}

func (c *Controller) report(err error) {
	if err != nil && c.onError != nil {
		c.onError(err)
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Queue returns the pending repeat count digits.
func (c *Controller) Queue() string { return c.queue.String() }

// Input returns the line input.
func (c *Controller) Input() *lineinput.Model { return c.input }

// Update routes a message to the open session, or handles it as a normal
// mode key.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.input.Active() {
		cmd := c.input.Update(msg)
		return tea.Batch(cmd, c.takePending())
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	if key.String() == CommandKey || key.Text == CommandKey {
		c.queue.Clear()
		c.report(c.Open(Command, lineinput.Session{OnSubmit: c.runLine}))
		return c.takePending()
	}
	c.report(c.HandleKey(key.String()))
	return c.takePending()
}

// takePending returns the focus command of a session opened since the last
// Update.
func (c *Controller) takePending() tea.Cmd {
	cmd := c.pending
	c.pending = nil
	return cmd
}

// HandleKey processes a normal mode key.
func (c *Controller) HandleKey(key string) error {
	if c.mode != Normal {
		return ErrBusy
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		c.queue.Push(rune(key[0]))
		return nil
	}
	name, ok := c.bindings[key]
	if !ok {
		c.queue.Clear()
		return nil
	}
	return c.Exec(name, c.queue.Drain(), nil)
}

// Exec runs a command with a repeat count.
func (c *Controller) Exec(name string, count int, args []string) error {
	return c.exec.Exec(engine.Context{Context: c.ctx, Count: count}, name, args)
}

func (c *Controller) runLine(line string) {
	verb, args := engine.ParseLine(line)
	if verb == "" {
		return
	}
	c.report(c.Exec(verb, 1, args))
}

// Open starts a session in mode with the mode's default prompt.
func (c *Controller) Open(mode Mode, s lineinput.Session) error {
	return c.OpenPrompt(mode, DefaultPrompts[mode], s)
}

// OpenPrompt starts a session with an explicit prompt. The controller is
// back in normal mode before the session's submit, cancel or delimiter
// callback runs.
func (c *Controller) OpenPrompt(mode Mode, prompt string, s lineinput.Session) error {
	if mode == Normal {
		return errors.New("normal mode has no session")
	}
	if c.mode != Normal || c.input.Active() {
		return ErrBusy
	}
	submit, cancel, delim := s.OnSubmit, s.OnCancel, s.OnDelimiter
	s.OnSubmit = func(v string) {
		c.mode = Normal
		if submit != nil {
			submit(v)
		}
	}
	s.OnCancel = func() {
		c.mode = Normal
		if cancel != nil {
			cancel()
		}
	}
	s.OnDelimiter = func(v string, r rune) {
		c.mode = Normal
		if delim != nil {
			delim(v, r)
		}
	}
	c.mode = mode
	c.pending = c.input.Open(prompt, s)
	return nil
}
