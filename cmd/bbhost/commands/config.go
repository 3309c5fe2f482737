package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/bashbuiltins/internal/config"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/paths"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect bbhost configuration",
	Long: `Inspect the effective configuration: the config file merged with
defaults and BBHOST_ environment overrides.

Without a subcommand, prints the configuration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return showConfig(cmd.OutOrStdout(), currentConfig())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return showConfig(cmd.OutOrStdout(), currentConfig())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Long: `Print the configuration file that was loaded, or the default location
when none exists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		path := viper.ConfigFileUsed()
		if path == "" {
			path = filepath.Join(paths.ConfigDir(), paths.ConfigFileName+".yaml")
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

func showConfig(w io.Writer, c *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(enc.Close(), "encoding config")
}
