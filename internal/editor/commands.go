package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/oakwood-commons/ye/internal/config"
	"github.com/oakwood-commons/ye/internal/document"
	"github.com/oakwood-commons/ye/internal/engine"
	"github.com/oakwood-commons/ye/internal/render"
	"github.com/oakwood-commons/ye/internal/scalar"
	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/oakwood-commons/ye/pkg/loader"
)

// ErrNoFileName is returned by write when neither an argument nor the
// session names a file.
var ErrNoFileName = errors.New("no file name")

func (e *Editor) handlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"echo":          e.cmdEcho,
		"echoerr":       e.cmdEchoErr,
		"exit":          e.cmdExit,
		"pwd":           e.cmdPwd,
		"pos":           e.cmdPos,
		"write":         e.cmdWrite,
		"wq":            e.cmdWriteQuit,
		"set":           e.cmdSet,
		"yank":          e.cmdYank,
		"validate":      e.cmdValidate,
		"help":          e.cmdHelp,
		"goNextKey":     e.nav((*document.Document).NextKey),
		"goPrevKey":     e.nav((*document.Document).PrevKey),
		"goNextValue":   e.nav((*document.Document).NextValue),
		"goPrevValue":   e.nav((*document.Document).PrevValue),
		"goChildren":    e.nav(func(d *document.Document, _ int) error { return d.Enter() }),
		"goParent":      e.nav(func(d *document.Document, _ int) error { return d.Exit() }),
		"transform":     e.cmdTransform,
		"insertAfter":   e.cmdInsertAfter,
		"changeElement": e.cmdChangeElement,
		"deleteElement": e.cmdDelete,
		"search":        e.cmdSearch,
		"goto":          e.cmdGoto,
		"nextMatch":     e.cmdMatch(1),
		"prevMatch":     e.cmdMatch(-1),
	}
}

// buildRegistry registers every handler, taking names, aliases and
// expansion from the configured command list. Configured commands without
// a handler are skipped.
func (e *Editor) buildRegistry(specs []config.CommandConfig) (*engine.Registry, error) {
	handlers := e.handlers()
	cmds := make([]engine.Command, 0, len(handlers))
	for _, s := range specs {
		h, ok := handlers[s.Name]
		if !ok {
			e.log.Info("ignoring configured command without handler", "command", s.Name)
			continue
		}
		delete(handlers, s.Name)
		e.specs[s.Name] = s
		cmds = append(cmds, engine.Command{Name: s.Name, Aliases: s.Aliases, Expandable: s.Expandable(), Handler: h})
	}
	rest := make([]string, 0, len(handlers))
	for name := range handlers {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		cmds = append(cmds, engine.Command{Name: name, Handler: handlers[name]})
	}
	return engine.NewRegistry(cmds...)
}

func (e *Editor) cmdEcho(_ engine.Context, args []string, done func()) error {
	e.echo("%s", joinArgs(args))
	done()
	return nil
}

func (e *Editor) cmdEchoErr(_ engine.Context, args []string, done func()) error {
	e.echoErr("%s", joinArgs(args))
	done()
	return nil
}

func (e *Editor) cmdExit(_ engine.Context, _ []string, done func()) error {
	e.quitting = true
	done()
	return nil
}

func (e *Editor) cmdPwd(_ engine.Context, _ []string, done func()) error {
	defer done()
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	e.echo("%s", wd)
	return nil
}

type posReport struct {
	Index  string         `json:"index"`
	Nested string         `json:"nested"`
	Type   string         `json:"type"`
	Box    *render.Region `json:"box,omitempty"`
}

func (e *Editor) cmdPos(_ engine.Context, _ []string, done func()) error {
	defer done()
	p := e.doc.Position()
	rep := posReport{Index: p.Index, Nested: p.Nested, Type: string(p.Type)}
	if box, ok := e.doc.Cursor().Box(); ok {
		rep.Box = &box
	}
	out, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	e.echo("%s", out)
	return nil
}

func (e *Editor) cmdWrite(_ engine.Context, args []string, done func()) error {
	defer done()
	return e.write(args)
}

func (e *Editor) write(args []string) error {
	path, format := e.path, e.format
	if len(args) > 0 {
		path = args[0]
		if f, ok := loader.FormatFromPath(path); ok {
			format = f
		}
	}
	if path == "" {
		return ErrNoFileName
	}
	if err := loader.WriteTree(path, e.doc.Root(), format); err != nil {
		e.log.Error(err, "write failed", "path", path)
		return err
	}
	if e.path == "" || path == e.path {
		e.path, e.format = path, format
		e.newFile, e.dirty = false, false
	}
	e.echo("%q written", path)
	return nil
}

func (e *Editor) cmdWriteQuit(_ engine.Context, args []string, done func()) error {
	defer done()
	if err := e.write(args); err != nil {
		return err
	}
	e.quitting = true
	return nil
}

func (e *Editor) cmdSet(_ engine.Context, args []string, done func()) error {
	defer done()
	cfg := e.doc.Renderer().Config()
	if len(args) == 0 {
		e.echo("dialect=%s indent=%d inline_width=%d ruler=%t", e.dialect.Name(), cfg.Indent, cfg.InlineWidth, cfg.Ruler)
		return nil
	}
	name, value, hasValue := strings.Cut(args[0], "=")
	if !hasValue && len(args) > 1 {
		value, hasValue = args[1], true
	}
	switch name {
	case "dialect":
		if !hasValue {
			e.echo("dialect=%s (%s)", e.dialect.Name(), strings.Join(e.queries.Names(), ", "))
			return nil
		}
		d, err := e.queries.Lookup(value)
		if err != nil {
			return err
		}
		e.dialect = d
		e.echo("dialect=%s", d.Name())
		return nil
	case "ruler", "noruler":
		cfg.Ruler = name == "ruler"
		if hasValue {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("set ruler: %w", err)
			}
			cfg.Ruler = b
		}
	case "indent", "inline_width":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("set %s: want a non-negative number, got %q", name, value)
		}
		if name == "indent" {
			if n == 0 {
				return errors.New("set indent: must be at least 1")
			}
			cfg.Indent = n
		} else {
			cfg.InlineWidth = n
		}
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	if err := e.doc.SetRenderer(render.New(cfg)); err != nil {
		return err
	}
	e.echo("%s updated", name)
	return nil
}

func (e *Editor) cmdYank(_ engine.Context, _ []string, done func()) error {
	defer done()
	node, ok := e.doc.Node()
	if !ok {
		return errors.New("nothing to yank")
	}
	text := scalar.Stringify(node)
	if tree.IsContainer(node) && !tree.IsEmptyContainer(node) {
		out, err := loader.Encode(node, loader.FormatYAML)
		if err != nil {
			return err
		}
		text = strings.TrimRight(string(out), "\n")
	}
	if err := e.clip(text); err != nil {
		return fmt.Errorf("yank: %w", err)
	}
	e.echo("yanked %d bytes", len(text))
	return nil
}

func (e *Editor) cmdValidate(_ engine.Context, args []string, done func()) error {
	defer done()
	schemaPath := e.schemaPath
	if len(args) > 0 {
		schemaPath = args[0]
	}
	if schemaPath == "" {
		return errors.New("validate: no schema given")
	}
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(e.doc.Root())
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	res, err := gojsonschema.Validate(
		gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(abs)),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		e.echo("valid against %s", schemaPath)
		return nil
	}
	msgs := make([]string, 0, 3)
	for i, re := range res.Errors() {
		if i == 3 {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(res.Errors())-3))
			break
		}
		msgs = append(msgs, re.String())
	}
	e.echoErr("invalid: %s", strings.Join(msgs, "; "))
	return nil
}

type functionLister interface {
	Functions() []string
}

func (e *Editor) cmdHelp(_ engine.Context, args []string, done func()) error {
	defer done()
	if len(args) == 0 {
		e.echo("commands: %s", strings.Join(e.commands.Names(), " "))
		return nil
	}
	topic := args[0]
	if d, err := e.queries.Lookup(topic); err == nil {
		if fl, ok := d.(functionLister); ok {
			e.echo("%s functions: %s", d.Name(), strings.Join(fl.Functions(), " "))
		} else {
			e.echo("%s: see the %s documentation for its syntax", d.Name(), d.Name())
		}
		return nil
	}
	c, err := e.commands.Resolve(topic)
	if err != nil {
		return err
	}
	spec := e.specs[c.Name]
	text := c.Name
	if len(c.Aliases) > 0 {
		text += " (" + strings.Join(c.Aliases, ", ") + ")"
	}
	if spec.Description != "" {
		text += ": " + spec.Description
	}
	e.echo("%s", text)
	return nil
}

// nav adapts a document motion to a handler that passes the repeat count.
func (e *Editor) nav(move func(*document.Document, int) error) engine.Handler {
	return func(ctx engine.Context, _ []string, done func()) error {
		defer done()
		return move(e.doc, ctx.Count)
	}
}

func (e *Editor) cmdDelete(ctx engine.Context, _ []string, done func()) error {
	defer done()
	if e.doc.Position().IsRoot() {
		return nil
	}
	if err := e.doc.Delete(ctx.Count); err != nil {
		return err
	}
	e.markDirty()
	return nil
}
