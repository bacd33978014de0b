// Package editor wires a document, the command engine and the modal
// controller into one editing session. The UI drives it with tea messages
// and reads its state back for display.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/ye/internal/config"
	"github.com/oakwood-commons/ye/internal/cursor"
	"github.com/oakwood-commons/ye/internal/document"
	"github.com/oakwood-commons/ye/internal/engine"
	"github.com/oakwood-commons/ye/internal/lineinput"
	"github.com/oakwood-commons/ye/internal/modal"
	"github.com/oakwood-commons/ye/internal/query"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/oakwood-commons/ye/pkg/loader"
	"github.com/oakwood-commons/ye/pkg/logger"
)

// Options configures a session.
type Options struct {
	// Path is where write saves by default. Empty means the document has no
	// file yet.
	Path    string
	Format  loader.Format
	NewFile bool

	Config     config.Config
	Dialect    string
	SchemaPath string

	// Clipboard receives yanked text. Nil uses the system clipboard.
	Clipboard func(string) error
	// Now is the clock for status messages. Nil uses time.Now.
	Now func() time.Time
}

// Status is the message shown in the status line.
type Status struct {
	Text  string
	Error bool
	ID    int
}

// statusClearMsg expires a status message.
type statusClearMsg struct {
	ID int
}

// Editor is one editing session.
type Editor struct {
	ctx context.Context
	log logr.Logger

	doc      *document.Document
	commands *engine.Registry
	ctrl     *modal.Controller
	queries  *query.Registry
	dialect  query.Dialect
	specs    map[string]config.CommandConfig

	cfg        config.Config
	path       string
	format     loader.Format
	newFile    bool
	dirty      bool
	schemaPath string

	status   Status
	statusID int
	timeout  time.Duration
	cmds     []tea.Cmd
	quitting bool

	lastPattern string
	matchIndex  int

	clip func(string) error
	now  func() time.Time
}

// New opens root for editing.
func New(ctx context.Context, root any, opts Options) (*Editor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if root == nil {
		root = tree.NewMap()
	}
	queries, err := query.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	dialectName := opts.Dialect
	if dialectName == "" {
		dialectName = opts.Config.Editor.Dialect
	}
	dialect, err := queries.Lookup(dialectName)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		ctx:        ctx,
		log:        logger.FromContext(ctx).WithName("editor"),
		queries:    queries,
		dialect:    dialect,
		cfg:        opts.Config,
		path:       opts.Path,
		format:     opts.Format,
		newFile:    opts.NewFile,
		schemaPath: opts.SchemaPath,
		timeout:    opts.Config.StatusTimeout(),
		clip:       opts.Clipboard,
		now:        opts.Now,
		specs:      map[string]config.CommandConfig{},
	}
	if e.format == "" {
		e.format = loader.FormatYAML
	}
	if e.clip == nil {
		e.clip = clipboard.WriteAll
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.doc = document.New(root, render.New(RenderConfig(opts.Config)))
	if e.commands, err = e.buildRegistry(opts.Config.Commands); err != nil {
		return nil, err
	}
	e.commands.OnDone(func(name string) {
		e.log.V(1).Info("command done", "command", name)
	})

	e.ctrl = modal.New(ctx, e, lineinput.New(), opts.Config.Keys)
	e.ctrl.OnError(e.fail)
	return e, nil
}

// RenderConfig derives the renderer settings from the configuration.
func RenderConfig(cfg config.Config) render.Config {
	def := render.DefaultConfig()
	return render.Config{
		Indent:      config.IntValue(cfg.Editor.Indent, def.Indent),
		InlineWidth: config.IntValue(cfg.Editor.InlineWidth, def.InlineWidth),
		Ruler:       config.BoolValue(cfg.Editor.Ruler, def.Ruler),
	}
}

// Exec runs a command through the registry. It implements modal.Executor.
func (e *Editor) Exec(ctx engine.Context, name string, args []string) error {
	e.log.V(1).Info("dispatch", "command", name, "args", args, "count", ctx.Count)
	return e.commands.Exec(ctx, name, args)
}

// Run executes a command line such as "write out.json".
func (e *Editor) Run(line string) error {
	verb, args := engine.ParseLine(line)
	if verb == "" {
		return nil
	}
	err := e.ctrl.Exec(verb, 1, args)
	e.fail(err)
	return err
}

// Update feeds a message to the session and returns the commands the UI
// should run.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case statusClearMsg:
		if msg.ID == e.status.ID {
			e.status = Status{}
		}
		return nil
	case tea.KeyPressMsg:
		if e.ctrl.Mode() == modal.Normal && !e.ctrl.Input().Active() {
			e.status = Status{}
		}
	}
	cmd := e.ctrl.Update(msg)
	return tea.Batch(append(e.takeCmds(), cmd)...)
}

func (e *Editor) takeCmds() []tea.Cmd {
	cmds := e.cmds
	e.cmds = nil
	if e.quitting {
		cmds = append(cmds, tea.Quit)
	}
	return cmds
}

// SetSize forwards the viewport size. Height is the number of tree rows.
func (e *Editor) SetSize(width, height int) {
	e.ctrl.Input().SetWidth(width - 4)
	e.fail(e.doc.SetSize(width, height))
}

// Document returns the edited document.
func (e *Editor) Document() *document.Document { return e.doc }

// Controller returns the mode controller.
func (e *Editor) Controller() *modal.Controller { return e.ctrl }

// Commands returns the command registry.
func (e *Editor) Commands() *engine.Registry { return e.commands }

// Mode returns the active input mode.
func (e *Editor) Mode() modal.Mode { return e.ctrl.Mode() }

// Status returns the current status message.
func (e *Editor) Status() Status { return e.status }

// Dialect returns the active query dialect.
func (e *Editor) Dialect() query.Dialect { return e.dialect }

// Quitting reports whether an exit command ran.
func (e *Editor) Quitting() bool { return e.quitting }

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

// Path returns the file the document saves to.
func (e *Editor) Path() string { return e.path }

// Format returns the serialization format used by write.
func (e *Editor) Format() loader.Format { return e.format }

// FileLabel is the status line text when no message is shown.
func (e *Editor) FileLabel() string {
	if e.path == "" {
		return "[no file]"
	}
	label := fmt.Sprintf("%q", e.path)
	if e.newFile {
		label += " [new file]"
	}
	if e.dirty {
		label += " [+]"
	}
	return label
}

// PathLine describes the cursor position, or the last status message.
func (e *Editor) PathLine() string {
	return e.doc.Position().String()
}

func (e *Editor) echo(format string, args ...any) {
	e.setStatus(fmt.Sprintf(format, args...), false)
}

func (e *Editor) echoErr(format string, args ...any) {
	e.setStatus(fmt.Sprintf(format, args...), true)
}

func (e *Editor) setStatus(text string, isErr bool) {
	e.statusID++
	e.status = Status{Text: text, Error: isErr, ID: e.statusID}
	id := e.statusID
	e.cmds = append(e.cmds, tea.Tick(e.timeout, func(time.Time) tea.Msg {
		return statusClearMsg{ID: id}
	}))
}

// fail reports err on the status line. Desyncs are also logged, since they
// mean the renderer and the tree disagree.
func (e *Editor) fail(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, cursor.ErrDesync) {
		e.log.Error(err, "render desync", "position", e.doc.Position().MapKey())
	}
	var amb *engine.AmbiguousError
	switch {
	case errors.As(err, &amb):
		e.echoErr("%s", amb.Error())
	default:
		e.echoErr("%s", err.Error())
	}
}

func (e *Editor) markDirty() {
	e.dirty = true
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
