package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/ye/internal/config"
	"github.com/oakwood-commons/ye/pkg/settings"
)

func newConfigCmd(params *settings.Run) *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the merged ye configuration",
		Long: "Print the embedded defaults merged with the user config file.\n" +
			"The file is --config-file, else $XDG_CONFIG_HOME/ye/config.yaml or ~/.config/ye/config.yaml.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(params.ConfigFile)
			if err != nil {
				return err
			}
			data, err := renderConfig(cfg, output)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path != "" {
				fmt.Fprintf(out, "# merged with %s\n", path)
			}
			_, err = out.Write(data)
			return err
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")
	return c
}

func renderConfig(cfg config.Config, output string) ([]byte, error) {
	switch output {
	case "", "yaml", "yml":
		return cfg.YAML()
	case "json":
		// json has no tags on the config types, so go through the yaml view
		raw, err := cfg.YAML()
		if err != nil {
			return nil, err
		}
		var plain map[string]any
		if err := yaml.Unmarshal(raw, &plain); err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(plain, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unsupported config output %q: use yaml or json", output)
}
