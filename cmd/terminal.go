package cmd

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

var (
	stdinIsPiped     = func() bool { return !term.IsTerminal(int(os.Stdin.Fd())) }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
)

// resolveSize picks the screen size: flags first, then the terminal, then
// $COLUMNS/$LINES, then 80x24.
func resolveSize(flagWidth, flagHeight int) (int, int) {
	width, height := flagWidth, flagHeight
	if width <= 0 || height <= 0 {
		w, h := detectTerminalSize()
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}
	if width <= 0 {
		width = fallbackWidth
	}
	if height <= 0 {
		height = fallbackHeight
	}
	return width, height
}

// detectTerminalSize probes stdout, stderr and stdin, then the environment.
func detectTerminalSize() (int, int) {
	for _, f := range []*os.File{os.Stdout, os.Stderr, os.Stdin} {
		if w, h, err := termGetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return envInt("COLUMNS"), envInt("LINES")
}

func envInt(name string) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// getProgramOptions reads keys from the real terminal when the document
// came in on stdin.
func getProgramOptions() ([]tea.ProgramOption, func()) {
	if !stdinIsPiped() {
		return nil, func() {}
	}
	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// no tty (CI); the program runs on the pipe
		return nil, func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}
	return opts, func() {
		cancel()
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)
	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls the terminal size; resize signals do not
// reach a program whose stdin is a pipe on every platform.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		go func() {
			t := time.NewTicker(250 * time.Millisecond)
			defer t.Stop()
			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil || (w == lastW && h == lastH) {
						continue
					}
					lastW, lastH = w, h
					p.Send(tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}
