package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder() (*[]string, Handler) {
	calls := &[]string{}
	return calls, func(ctx Context, args []string, done func()) error {
		*calls = append(*calls, args...)
		done()
		return nil
	}
}

func newRegistry(t *testing.T) (*Registry, map[string]*[]string) {
	t.Helper()
	calls := map[string]*[]string{}
	mk := func(name string, expand bool, aliases ...string) Command {
		rec, h := recorder()
		calls[name] = rec
		return Command{Name: name, Expandable: expand, Aliases: aliases, Handler: h}
	}
	r, err := NewRegistry(
		mk("echo", true),
		mk("echoerr", false),
		mk("exit", true, "quit", "q"),
		mk("pwd", false, "cwd"),
		mk("write", true, "w"),
		mk("wq", false, "x"),
	)
	require.NoError(t, err)
	return r, calls
}

func TestResolveOrder(t *testing.T) {
	r, _ := newRegistry(t)
	tests := map[string]string{
		"echo":    "echo",
		"echoerr": "echoerr",
		"ec":      "echo",
		"quit":    "exit",
		"q":       "exit",
		"exi":     "exit",
		"cwd":     "pwd",
		"w":       "write",
		"wr":      "write",
		"x":       "wq",
	}
	for in, want := range tests {
		c, err := r.Resolve(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, c.Name, in)
	}
}

func TestResolveNotFound(t *testing.T) {
	r, _ := newRegistry(t)
	// pwd is not expandable
	for _, in := range []string{"nope", "pw", "echoo", "writefoo"} {
		_, err := r.Resolve(in)
		assert.True(t, errors.Is(err, ErrNotFound), in)
		assert.ErrorContains(t, err, in)
	}
}

func TestExecAmbiguousRunsNothing(t *testing.T) {
	r, calls := newRegistry(t)
	err := r.Exec(Context{}, "e", []string{"hi"})

	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "e", amb.Name)
	assert.Equal(t, []string{"echo", "exit"}, amb.Candidates)
	for name, c := range calls {
		assert.Empty(t, *c, name)
	}
}

func TestExecPassesArgsAndCount(t *testing.T) {
	var got Context
	var doneFor []string
	r, err := NewRegistry(Command{Name: "go", Handler: func(ctx Context, args []string, done func()) error {
		got = ctx
		done()
		done()
		return nil
	}})
	require.NoError(t, err)
	r.OnDone(func(name string) { doneFor = append(doneFor, name) })

	require.NoError(t, r.Exec(Context{}, "go", nil))
	assert.Equal(t, 1, got.Count)
	assert.NotNil(t, got.Context)
	assert.Equal(t, []string{"go"}, doneFor)

	require.NoError(t, r.Exec(Context{Count: 4}, "go", nil))
	assert.Equal(t, 4, got.Count)
}

func TestAsyncDone(t *testing.T) {
	var later func()
	finished := false
	r, err := NewRegistry(Command{Name: "prompt", Handler: func(ctx Context, args []string, done func()) error {
		later = done
		return nil
	}})
	require.NoError(t, err)
	r.OnDone(func(string) { finished = true })

	require.NoError(t, r.Exec(Context{}, "prompt", nil))
	assert.False(t, finished)
	later()
	assert.True(t, finished)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(Command{Name: "a"}, Command{Name: "a"})
	assert.Error(t, err)
	_, err = NewRegistry(Command{Name: "a"}, Command{Name: "b", Aliases: []string{"a"}})
	assert.Error(t, err)
	_, err = NewRegistry(Command{Name: ""})
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	verb, args := ParseLine("  echo hello   world ")
	assert.Equal(t, "echo", verb)
	assert.Equal(t, []string{"hello", "world"}, args)
	verb, args = ParseLine("   ")
	assert.Empty(t, verb)
	assert.Nil(t, args)
}
