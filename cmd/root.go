package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/ye/internal/config"
	"github.com/oakwood-commons/ye/internal/editor"
	"github.com/oakwood-commons/ye/internal/formatter"
	"github.com/oakwood-commons/ye/internal/tree"
	"github.com/oakwood-commons/ye/internal/ui"
	"github.com/oakwood-commons/ye/pkg/loader"
	"github.com/oakwood-commons/ye/pkg/logger"
	"github.com/oakwood-commons/ye/pkg/settings"
)

// outputTree prints the document with internal/formatter.
const outputTree = "tree"

// newRootCmd builds the command tree. Each call gets its own flag state.
func newRootCmd() *cobra.Command {
	params := settings.NewCliParams()
	var debug bool

	root := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Modal terminal editor for JSON, YAML and TOML trees",
		Long: "ye opens a JSON, YAML or TOML document as a navigable tree and edits it\n" +
			"with modal, vim-like keys. A missing file is created on the first write.",
		Example: "\n  ye config.yaml\n  ye new.json\n" +
			"  ye data.yaml --press '=items[0]<CR>' --output json\n" +
			"  ye data.yaml --press 'jl' --snapshot --no-color\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				params.MinLogLevel = -1
			}
			var out io.Writer
			if params.LogFile != "" {
				// left open until the process exits so Sync can flush it
				f, err := logger.OpenFile(params.LogFile)
				if err != nil {
					return err
				}
				out = f
			}
			lgr := logger.Get(params.MinLogLevel, logger.Options{Output: out})
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
			ctx := logger.WithLogger(cmd.Context(), lgr)
			cmd.SetContext(settings.IntoContext(ctx, params))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEditor(cmd.Context(), cmd.OutOrStdout(), path)
		},
	}

	flags := root.Flags()
	root.PersistentFlags().StringVar(&params.ConfigFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/ye/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	root.PersistentFlags().StringVar(&params.LogFile, "log-file", "", "append JSON log lines to this file (logs are discarded otherwise)")
	flags.BoolVar(&params.NoColor, "no-color", false, "disable color output")
	flags.StringVar(&params.Dialect, "dialect", "", "transform query dialect: jmespath|cel|gjson|expr (default from config)")
	flags.StringVar(&params.SchemaPath, "schema", "", "JSON Schema file used by the validate command")
	flags.StringVar(&params.Press, "press", "", "keys replayed on startup. Use <Esc>, <CR>, <BS>, <Tab>, <Space>, <Up>, <C-c> for special keys; other text types normally")
	flags.BoolVar(&params.Snapshot, "snapshot", false, "render one frame after --press and print it instead of opening the editor")
	flags.StringVarP(&params.Output, "output", "o", "", "print the document after --press instead of opening the editor: json|yaml|toml|tree")
	flags.IntVar(&params.Width, "width", 0, "screen width for --snapshot (default terminal width)")
	flags.IntVar(&params.Height, "height", 0, "screen height for --snapshot (default terminal height)")

	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(newVersionCmd(), newConfigCmd(params))
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ye version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

// openDocument reads path, or starts an empty document when it does not
// exist yet. An empty path with piped stdin reads the document from stdin.
func openDocument(path string, stdin io.Reader) (any, editor.Options, error) {
	opts := editor.Options{Path: path}
	if path == "" {
		if stdin == nil || !stdinIsPiped() {
			return tree.NewMap(), opts, nil
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, opts, fmt.Errorf("read stdin: %w", err)
		}
		opts.Format = loader.Sniff(data)
		root, err := loader.Decode(data, opts.Format)
		return root, opts, err
	}

	root, format, err := loader.ReadTree(path)
	opts.Format = format
	if errors.Is(err, loader.ErrNotExist) {
		opts.NewFile = true
		return tree.NewMap(), opts, nil
	}
	return root, opts, err
}

func runEditor(ctx context.Context, out io.Writer, path string) error {
	params := settings.OrDefault(ctx)
	lgr := logger.FromContext(ctx)

	cfg, cfgPath, err := loadConfig(params.ConfigFile)
	if err != nil {
		return err
	}
	lgr.V(1).Info("config loaded", "path", cfgPath)

	root, opts, err := openDocument(path, os.Stdin)
	if err != nil {
		return err
	}
	opts.Config = cfg
	opts.Dialect = params.Dialect
	opts.SchemaPath = params.SchemaPath

	ed, err := editor.New(ctx, root, opts)
	if err != nil {
		return err
	}
	lgr.Info("document opened", "path", path, "format", string(ed.Format()), "new_file", opts.NewFile)

	width, height := resolveSize(params.Width, params.Height)
	m := ui.NewModel(ed, ui.NewTheme(cfg.Theme, params.NoColor), width, height)

	switch {
	case params.Snapshot:
		view := ui.RenderSnapshot(m, ui.SnapshotConfig{NoColor: params.NoColor, Keys: params.Press})
		_, err := fmt.Fprintln(out, view)
		return err
	case params.Output != "":
		ui.ApplyStartupKeys(m, params.Press)
		return printDocument(out, ed.Document().Root(), params.Output)
	}

	progOpts, cleanup := getProgramOptions()
	defer cleanup()
	if params.Press != "" {
		ui.ApplyStartupKeys(m, params.Press)
		if ed.Quitting() {
			return nil
		}
	}
	return ui.Run(m, progOpts...)
}

func printDocument(out io.Writer, root any, output string) error {
	if strings.EqualFold(output, outputTree) {
		_, err := io.WriteString(out, formatter.FormatAsTree(root, formatter.TreeOptions{}))
		return err
	}
	format, err := loader.ParseFormat(output)
	if err != nil {
		return fmt.Errorf("--output: %w", err)
	}
	data, err := loader.Encode(root, format)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(out, "\n")
	}
	return err
}

// loadConfig merges the user file over the embedded defaults and reports
// which file was used.
func loadConfig(explicit string) (config.Config, string, error) {
	path := config.ResolvePath(explicit)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, path, nil
}
