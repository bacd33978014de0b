// Package engine dispatches named commands. A name resolves by exact match,
// then alias, then as an abbreviation of an expandable command.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no command matches a name.
var ErrNotFound = errors.New("command not found")

// AmbiguousError is returned when an abbreviation matches several commands.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("this command is ambiguous: %s (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// Context is passed to every handler.
type Context struct {
	context.Context
	// Count is the repeat count typed before a key binding, at least 1.
	Count int
}

// Handler runs a command. Handlers that finish later, after a prompt
// closes, call done at that point; others call it before returning.
type Handler func(ctx Context, args []string, done func()) error

// Command is a registry entry.
type Command struct {
	Name       string
	Aliases    []string
	Expandable bool
	Handler    Handler
}

// Registry is an immutable set of commands.
type Registry struct {
	commands map[string]Command
	aliases  map[string]string
	prefixes map[string][]string
	onDone   func(name string)
}

// NewRegistry indexes cmds. Names and aliases must be unique.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]Command, len(cmds)),
		aliases:  map[string]string{},
		prefixes: map[string][]string{},
	}
	taken := func(n string) bool {
		_, isCmd := r.commands[n]
		_, isAlias := r.aliases[n]
		return isCmd || isAlias
	}
	for _, c := range cmds {
		if c.Name == "" {
			return nil, errors.New("command with empty name")
		}
		if taken(c.Name) {
			return nil, fmt.Errorf("duplicate command %q", c.Name)
		}
		r.commands[c.Name] = c
	}
	for _, c := range cmds {
		for _, a := range c.Aliases {
			if taken(a) {
				return nil, fmt.Errorf("alias %q of %q is already taken", a, c.Name)
			}
			r.aliases[a] = c.Name
		}
	}
	for _, c := range cmds {
		if !c.Expandable {
			continue
		}
		for i := 1; i < len(c.Name); i++ {
			p := c.Name[:i]
			r.prefixes[p] = append(r.prefixes[p], c.Name)
		}
	}
	for _, names := range r.prefixes {
		sort.Strings(names)
	}
	return r, nil
}

// OnDone registers a hook that runs when a command calls done.
func (r *Registry) OnDone(fn func(name string)) {
	r.onDone = fn
}

// Resolve finds the command for name.
func (r *Registry) Resolve(name string) (Command, error) {
	if c, ok := r.commands[name]; ok {
		return c, nil
	}
	if target, ok := r.aliases[name]; ok {
		return r.commands[target], nil
	}
	switch candidates := r.prefixes[name]; len(candidates) {
	case 0:
		return Command{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	case 1:
		return r.commands[candidates[0]], nil
	default:
		return Command{}, &AmbiguousError{Name: name, Candidates: append([]string(nil), candidates...)}
	}
}

// Exec resolves name and runs its handler.
func (r *Registry) Exec(ctx Context, name string, args []string) error {
	c, err := r.Resolve(name)
	if err != nil {
		return err
	}
	if c.Handler == nil {
		return fmt.Errorf("command %q has no handler", c.Name)
	}
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Count < 1 {
		ctx.Count = 1
	}
	called := false
	done := func() {
		if called {
			return
		}
		called = true
		if r.onDone != nil {
			r.onDone(c.Name)
		}
	}
	return c.Handler(ctx, args, done)
}

// Names lists command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the command registered under its exact name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// ParseLine splits a command line into verb and arguments.
func ParseLine(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
