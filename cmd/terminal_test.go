package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSize(t *testing.T) {
	restore := termGetSize
	t.Cleanup(func() { termGetSize = restore })
	t.Setenv("COLUMNS", "")
	t.Setenv("LINES", "")

	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	w, h := resolveSize(0, 0)
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	w, h = resolveSize(100, 0)
	assert.Equal(t, 100, w)
	assert.Equal(t, 24, h)

	t.Setenv("COLUMNS", "132")
	t.Setenv("LINES", "50")
	w, h = resolveSize(0, 0)
	assert.Equal(t, 132, w)
	assert.Equal(t, 50, h)

	termGetSize = func(int) (int, int, error) { return 120, 40, nil }
	w, h = resolveSize(0, 10)
	assert.Equal(t, 120, w)
	assert.Equal(t, 10, h)
}

func TestTerminalDeviceNames(t *testing.T) {
	in, out := terminalDeviceNames("windows")
	assert.Equal(t, "CONIN$", in)
	assert.Equal(t, "CONOUT$", out)

	in, out = terminalDeviceNames("linux")
	assert.Equal(t, "/dev/tty", in)
	assert.Equal(t, "/dev/tty", out)
}

func TestGetProgramOptionsWithoutPipe(t *testing.T) {
	restore := stdinIsPiped
	t.Cleanup(func() { stdinIsPiped = restore })
	stdinIsPiped = func() bool { return false }

	opts, cleanup := getProgramOptions()
	assert.Nil(t, opts)
	cleanup()
}
